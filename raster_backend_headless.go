//go:build headless

// raster_backend_headless.go - no-op display backend for CI, grounded on
// voodoo_vulkan_headless.go's same-type-name build-tag swap: HostDisplay
// exposes the identical surface as raster_backend_ebiten.go's version so
// main.go never branches on the build tag itself.

package main

func init() {
	compiledFeatures = append(compiledFeatures, "display:headless")
}

// HostDisplay stands in for the Ebiten-backed display under the headless
// build tag. Start/Stop are no-ops; nothing samples host input because
// there is no host window to sample.
type HostDisplay struct {
	fb  *Framebuffer
	usb *USBHIDDevice
}

// NewHostDisplay mirrors raster_backend_ebiten.go's constructor.
func NewHostDisplay(fb *Framebuffer, usb *USBHIDDevice) *HostDisplay {
	return &HostDisplay{fb: fb, usb: usb}
}

// Start is a no-op; there is no window to open.
func (hd *HostDisplay) Start(title string, scale int) {}

// Stop is a no-op.
func (hd *HostDisplay) Stop() {}
