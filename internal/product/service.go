package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/catalog/service/internal/storage"
)

// Validation errors. Neither causes any store call.
var (
	ErrNameRequired = errors.New("product name is required")
	ErrPriceInvalid = errors.New("product price must be a non-negative number")
)

// ErrUploadFailed is returned when the object store rejected or failed the
// image upload. No metadata row is written.
var ErrUploadFailed = errors.New("image upload failed")

// ErrPersistFailed is returned when the metadata insert failed after a
// successful upload. The uploaded object is left behind unreferenced.
var ErrPersistFailed = errors.New("product could not be saved")

// ImageUpload carries one uploaded image through the creation flow.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateInput is the raw, unvalidated input to Create. Price arrives as text
// because it comes straight off a multipart form field.
type CreateInput struct {
	Name  string
	Price string
	Image *ImageUpload
}

// Service contains the business logic for the product catalog. Creation is
// a dual write across two stores with no shared transaction; Create keeps
// them consistent by ordering alone.
type Service struct {
	repo  Repository
	store storage.Storage
}

// NewService creates a new product Service.
func NewService(repo Repository, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// Create validates the input, uploads the image (when present) and then
// inserts the metadata row referencing the uploaded object's URL.
//
// The upload always happens before the insert. A failure therefore leaves
// either nothing at all, or an unreferenced object in the store — never a
// row pointing at an object that does not exist. No step is retried and no
// compensating delete is attempted; an insert failure after a successful
// upload strands the object and is logged as such.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	price, err := parsePrice(in.Price)
	if err != nil {
		return nil, err
	}

	var imageURL *string
	var objectKey string
	if in.Image != nil {
		// Random prefix so concurrent uploads of the same filename never
		// collide; the original filename keeps the extension readable.
		objectKey = uuid.NewString() + "-" + in.Image.Filename
		if err := s.store.Upload(ctx, objectKey, in.Image.Reader, in.Image.Size, in.Image.ContentType); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		url := s.store.PublicURL(objectKey)
		imageURL = &url
	}

	p, err := s.repo.Insert(ctx, name, price, imageURL)
	if err != nil {
		if imageURL != nil {
			// The object is now orphaned. Logged distinctly so stranded
			// uploads can be found and cleaned up out of band.
			log.Printf("orphaned object %q: insert failed after upload: %v", objectKey, err)
			return nil, fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
		return nil, fmt.Errorf("insert product: %w", err)
	}

	return p, nil
}

// List returns every product currently in the catalog.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.repo.List(ctx)
}

// Delete removes the product row with the given id. The referenced image
// object, if any, is left in the store.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// IsInvalidInput reports whether err is a validation failure the client can
// fix by correcting the request.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrNameRequired) || errors.Is(err, ErrPriceInvalid)
}

// parsePrice parses a decimal price string, rejecting negatives and
// non-finite values.
func parsePrice(raw string) (float64, error) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return 0, ErrPriceInvalid
	}
	return price, nil
}
