package entities

import (
	"errors"
	"testing"
)

func TestDefaultCatalogLabel(t *testing.T) {
	if got := DefaultCatalog.Size(); got != 22 {
		t.Fatalf("catalog size = %d, want 22", got)
	}
	cases := map[int]CropLabel{0: "apple", 5: "coffee", 11: "maize", 20: "rice", 21: "watermelon"}
	for idx, want := range cases {
		got, err := DefaultCatalog.Label(idx)
		if err != nil || got != want {
			t.Errorf("Label(%d) = %q, %v; want %q", idx, got, err, want)
		}
		if back := DefaultCatalog.Index(want); back != idx {
			t.Errorf("Index(%q) = %d, want %d", want, back, idx)
		}
	}
}

func TestCatalogLabelOutOfRange(t *testing.T) {
	for _, idx := range []int{-1, 22, 1000} {
		if _, err := DefaultCatalog.Label(idx); !errors.Is(err, ErrUnknownClass) {
			t.Errorf("Label(%d) err = %v, want ErrUnknownClass", idx, err)
		}
	}
	if DefaultCatalog.Index("durian") != -1 {
		t.Error("Index of an unknown crop should be -1")
	}
}
