package entities

import (
	"errors"
	"fmt"
)

// CropLabel is a crop name produced by the inference model.
type CropLabel string

// ErrUnknownClass is returned when the model answers with a class index the catalog does not know.
var ErrUnknownClass = errors.New("unknown crop class")

// CropCatalog binds the model's class indices to crop names.
// Labels must stay in the exact order the model was trained with: the inference service only
// returns an index, so a reordered list silently yields the wrong crop.
type CropCatalog struct {
	Version string      `json:"version"`
	Labels  []CropLabel `json:"labels"`
}

// DefaultCatalog matches the class order of the crop model shipped with the inference service.
var DefaultCatalog = CropCatalog{
	Version: "crop-v1",
	Labels: []CropLabel{
		"apple", "banana", "blackgram", "chickpea", "coconut", "coffee",
		"cotton", "grapes", "jute", "kidneybeans", "lentil", "maize",
		"mango", "mothbeans", "mungbean", "muskmelon", "orange", "papaya",
		"pigeonpeas", "pomegranate", "rice", "watermelon",
	},
}

func (c CropCatalog) Size() int { return len(c.Labels) }

// Label resolves a zero-based class index.
func (c CropCatalog) Label(index int) (CropLabel, error) {
	if index < 0 || index >= len(c.Labels) {
		return "", fmt.Errorf("%w: index %d outside [0,%d] of catalog %s",
			ErrUnknownClass, index, len(c.Labels)-1, c.Version)
	}
	return c.Labels[index], nil
}

// Index is the inverse of Label; -1 when the crop is not in the catalog.
func (c CropCatalog) Index(label CropLabel) int {
	for i, l := range c.Labels {
		if l == label {
			return i
		}
	}
	return -1
}
