package browser

import (
	"testing"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	"github.com/splitlease/parity/internal/config"
)

func TestOptions_HeadlessAddsDisableGPU(t *testing.T) {
	cfg := config.Default().Browser

	headless := Options(cfg)
	cfg.Headless = false
	headed := Options(cfg)

	assert.Len(t, headless, len(headed)+1)
	assert.Greater(t, len(headed), len(chromedp.DefaultExecAllocatorOptions))
}

func TestOptions_DoesNotMutateDefaults(t *testing.T) {
	before := len(chromedp.DefaultExecAllocatorOptions)

	Options(config.Default().Browser)

	assert.Equal(t, before, len(chromedp.DefaultExecAllocatorOptions))
}
