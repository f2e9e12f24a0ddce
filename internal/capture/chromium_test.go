package capture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptionsNormalize(t *testing.T) {
	o := Options{URL: "http://127.0.0.1:8080/print", OutputPath: "out/roster.pdf"}
	assert.NoError(t, o.normalize())
	assert.Equal(t, 30*time.Second, o.Timeout)

	o = Options{OutputPath: "x.pdf"}
	assert.Error(t, o.normalize())

	o = Options{URL: "http://x"}
	assert.Error(t, o.normalize())
}

func TestCapturePDF_RejectsMissingURL(t *testing.T) {
	err := CapturePDF(context.Background(), Options{OutputPath: "x.pdf"})
	assert.ErrorContains(t, err, "URL is required")
}
