package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(repo Repository, store *fakeStorage) *chi.Mux {
	handler := NewHandler(NewService(repo, store))
	r := chi.NewRouter()
	r.Get("/products", handler.List)
	r.Post("/products", handler.Create)
	r.Delete("/products/{id}", handler.Delete)
	return r
}

func multipartRequest(t *testing.T, fields map[string]string, filename string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/products", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestCreateProduct_NoImage(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, newFakeStorage())

	req := multipartRequest(t, map[string]string{"name": "Widget", "price": "9.99"}, "", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", w.Code)
	}

	var resp createResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Message != "Product added successfully" {
		t.Errorf("unexpected message %q", resp.Message)
	}
	if resp.ImageURL != nil {
		t.Errorf("expected null imageUrl, got %q", *resp.ImageURL)
	}

	// The row must show up in a subsequent listing.
	req = httptest.NewRequest(http.MethodGet, "/products", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var products []Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(products))
	}
	if products[0].Name != "Widget" || products[0].Price != 9.99 || products[0].ImageURL != nil {
		t.Errorf("unexpected product: %+v", products[0])
	}
}

func TestCreateProduct_WithImage(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStorage()
	r := newTestRouter(repo, store)

	req := multipartRequest(t, map[string]string{"name": "Widget", "price": "9.99"}, "widget.png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp createResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ImageURL == nil || *resp.ImageURL == "" {
		t.Fatal("expected a non-empty imageUrl")
	}
	if len(store.objects) != 1 {
		t.Errorf("expected 1 uploaded object, got %d", len(store.objects))
	}
}

func TestCreateProduct_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
	}{
		{name: "missing name", fields: map[string]string{"price": "9.99"}},
		{name: "missing price", fields: map[string]string{"name": "Widget"}},
		{name: "negative price", fields: map[string]string{"name": "Widget", "price": "-5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeRepo{}
			r := newTestRouter(repo, newFakeStorage())

			req := multipartRequest(t, tt.fields, "", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			var resp map[string]string
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if resp["error"] == "" {
				t.Error("expected an error message")
			}
			if repo.insertCalls != 0 {
				t.Errorf("expected zero inserts, got %d", repo.insertCalls)
			}
		})
	}
}

func TestCreateProduct_UploadFailure(t *testing.T) {
	repo := &fakeRepo{}
	store := newFakeStorage()
	store.uploadErr = errors.New("bucket unreachable")
	r := newTestRouter(repo, store)

	req := multipartRequest(t, map[string]string{"name": "Widget", "price": "9.99"}, "widget.png", []byte("png-bytes"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", w.Code)
	}

	// The client sees what failed, not the backend detail.
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if resp["error"] != "failed to upload image" {
		t.Errorf("unexpected error message %q", resp["error"])
	}
	if repo.insertCalls != 0 {
		t.Errorf("expected zero inserts, got %d", repo.insertCalls)
	}
}

func TestDeleteProduct_UnknownID(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, newFakeStorage())

	req := httptest.NewRequest(http.MethodDelete, "/products/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["message"] != "Product deleted successfully" {
		t.Errorf("unexpected message %q", resp["message"])
	}
}

func TestDeleteProduct_InvalidID(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRouter(repo, newFakeStorage())

	req := httptest.NewRequest(http.MethodDelete, "/products/not-a-number", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestListProducts_Empty(t *testing.T) {
	r := newTestRouter(&fakeRepo{}, newFakeStorage())

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// An empty catalog is an empty array, not null.
	var products []Product
	if err := json.NewDecoder(w.Body).Decode(&products); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if products == nil {
		t.Error("expected an empty array")
	}
	if len(products) != 0 {
		t.Errorf("expected no products, got %d", len(products))
	}
}
