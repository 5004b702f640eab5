package recommender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/LeonardoBeccarini/crop_recommender/internal/model/entities"
)

func TestInferenceClassifyRejectsOutOfRangeClass(t *testing.T) {
	cases := []struct {
		body string
		want int
		ok   bool
	}{
		{`{"prediction": 7}`, 7, true},
		{`{"prediction": 7.0}`, 7, true},
		{`{"prediction": 1e300}`, 0, false},
		{`{"prediction": -3}`, 0, false},
		{`{"prediction": 2147483648}`, 0, false},
		{`{"prediction": null, "error": "model not loaded"}`, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := NewInferenceClient(srv.URL, srv.Client(), BreakerSettings{}, nil)
			got, err := c.Classify(context.Background(), entities.FeatureVector{N: 1})
			if tc.ok {
				if err != nil || got != tc.want {
					t.Fatalf("Classify = %d, %v; want %d", got, err, tc.want)
				}
				return
			}
			var de *UpstreamDataError
			if !errors.As(err, &de) {
				t.Fatalf("expected UpstreamDataError, got %d, %v", got, err)
			}
			if !strings.HasPrefix(de.Msg, "Inference service returned") {
				t.Fatalf("message = %q", de.Msg)
			}
		})
	}
}
