package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/TiagoSD22/amigurumi-store/pkg/errors"
	"github.com/TiagoSD22/amigurumi-store/pkg/validator"
)

// Product is a catalog item as the storefront renders it. Values are never
// mutated after decoding.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Images      []ProductImage  `json:"images"`
	IsFeatured  bool            `json:"is_featured"`
	IsAvailable bool            `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ProductImage is one entry of a product's carousel. Order is display order.
type ProductImage struct {
	URL       string `json:"url"`
	Filename  string `json:"filename"`
	IsDefault bool   `json:"is_default"`
}

func init() {
	validator.Register("category", func(v string) bool {
		return Category(v).Valid()
	})
}

type imagePayload struct {
	URL       string `json:"url" validate:"required"`
	Filename  string `json:"filename"`
	IsDefault bool   `json:"is_default"`
}

// productPayload is the catalog wire format. Older catalog builds send a
// single image URL instead of the images list.
type productPayload struct {
	ID          json.RawMessage `json:"id" validate:"required"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"category"`
	Image       string          `json:"image"`
	Images      []imagePayload  `json:"images" validate:"omitempty,dive"`
	IsFeatured  bool            `json:"is_featured"`
	IsAvailable *bool           `json:"is_available"`
	CreatedAt   time.Time       `json:"created_at"`
}

// DecodeProduct decodes and validates one product object.
func DecodeProduct(data []byte) (*Product, error) {
	var p Product
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DecodeProducts decodes a JSON array of products. A null body yields an
// empty, non-nil slice.
func DecodeProducts(data []byte) ([]Product, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalidPayload(err)
	}
	products := make([]Product, 0, len(raw))
	for i, item := range raw {
		var p Product
		if err := json.Unmarshal(item, &p); err != nil {
			return nil, fmt.Errorf("product %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

// UnmarshalJSON decodes the catalog wire format, normalizing the legacy
// single-image field and upper-casing the category.
func (p *Product) UnmarshalJSON(data []byte) error {
	var in productPayload
	if err := json.Unmarshal(data, &in); err != nil {
		return invalidPayload(err)
	}
	in.Category = strings.ToUpper(strings.TrimSpace(in.Category))
	if err := validator.Validate(in); err != nil {
		return invalidPayload(err)
	}
	if in.Price.IsNegative() {
		return invalidPayload(fmt.Errorf("field 'Price' must not be negative"))
	}
	id, err := decodeID(in.ID)
	if err != nil {
		return invalidPayload(err)
	}

	images := make([]ProductImage, 0, len(in.Images))
	for _, img := range in.Images {
		filename := img.Filename
		if filename == "" {
			filename = filenameOf(img.URL)
		}
		images = append(images, ProductImage{URL: img.URL, Filename: filename, IsDefault: img.IsDefault})
	}
	if len(images) == 0 && in.Image != "" {
		images = append(images, ProductImage{URL: in.Image, Filename: filenameOf(in.Image)})
	}

	available := true
	if in.IsAvailable != nil {
		available = *in.IsAvailable
	}

	*p = Product{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Category:    Category(in.Category),
		Images:      images,
		IsFeatured:  in.IsFeatured,
		IsAvailable: available,
		CreatedAt:   in.CreatedAt,
	}
	return nil
}

// decodeID accepts numeric and string identifiers.
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		if s == "" {
			return "", fmt.Errorf("field 'ID' is required")
		}
		return s, nil
	}
	n, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return "", fmt.Errorf("field 'ID' must be a string or integer")
	}
	return strconv.FormatInt(n, 10), nil
}

func filenameOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	name := path.Base(url)
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func invalidPayload(err error) error {
	return fmt.Errorf("%w: %v", apperrors.ServerFailure("catalog", 0, "catalog sent an unreadable product"), err)
}
