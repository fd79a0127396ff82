package product

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/catalog/service/internal/response"
)

// Handler holds HTTP handlers for product endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new product Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createResponse struct {
	Message  string  `json:"message"`
	ImageURL *string `json:"imageUrl"`
}

// List godoc
//
//	@Summary		List products
//	@Description	Returns every product in the catalog.
//	@Tags			products
//	@Produce		json
//	@Success		200	{array}		Product
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context())
	if err != nil {
		log.Printf("list products: %v", err)
		response.InternalError(w, "failed to list products")
		return
	}
	response.JSON(w, http.StatusOK, products)
}

// Create godoc
//
//	@Summary		Create a product
//	@Description	Creates a product from a multipart form. The image part is optional; when present it is uploaded to object storage and the product references its URL.
//	@Tags			products
//	@Accept			mpfd
//	@Produce		json
//	@Param			name	formData	string	true	"Product name"
//	@Param			price	formData	string	true	"Non-negative decimal price"
//	@Param			image	formData	file	false	"Product image"
//	@Success		201	{object}	createResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in := CreateInput{
		Name:  r.FormValue("name"),
		Price: r.FormValue("price"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		// No image supplied; the product is created without one.
	default:
		response.BadRequest(w, "invalid multipart form")
		return
	}

	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		switch {
		case IsInvalidInput(err):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrUploadFailed):
			log.Printf("create product: %v", err)
			response.InternalError(w, "failed to upload image")
		default:
			log.Printf("create product: %v", err)
			response.InternalError(w, "failed to save product")
		}
		return
	}

	response.JSON(w, http.StatusCreated, createResponse{
		Message:  "Product added successfully",
		ImageURL: p.ImageURL,
	})
}

// Delete godoc
//
//	@Summary		Delete a product
//	@Description	Deletes the product with the given id. Unknown ids are reported as success; the product's image object is never removed.
//	@Tags			products
//	@Produce		json
//	@Param			id	path		int	true	"Product id"
//	@Success		200	{object}	response.MessageBody
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/products/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "invalid product id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		log.Printf("delete product %d: %v", id, err)
		response.InternalError(w, "failed to delete product")
		return
	}

	response.Message(w, http.StatusOK, "Product deleted successfully")
}
