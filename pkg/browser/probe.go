package browser

import (
	"context"
	"fmt"
	"time"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
)

// ProbeResult describes a browser binary that answered over CDP.
type ProbeResult struct {
	Product         string
	ProtocolVersion string
	UserAgent       string
}

// Probe starts binary headless with a throwaway profile, asks it for its
// version over the DevTools protocol and shuts it down again.
func Probe(ctx context.Context, binary string, timeout time.Duration) (*ProbeResult, error) {
	if timeout <= 0 {
		timeout = DefaultLaunchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(binary),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var result ProbeResult
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		protocol, product, _, userAgent, _, err := cdpbrowser.GetVersion().Do(ctx)
		if err != nil {
			return err
		}
		result = ProbeResult{
			Product:         product,
			ProtocolVersion: protocol,
			UserAgent:       userAgent,
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("browser probe failed: %w", err)
	}
	return &result, nil
}
