package asset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrAssetLoad is returned when a product source cannot be read or decoded
	ErrAssetLoad = errors.New("asset load failed")
	// ErrUnsupportedFormat is returned when the decoded image is not 4, 3 or 1 channel
	ErrUnsupportedFormat = errors.New("unsupported product image format")
)

// Loader turns product images into immutable Products
type Loader struct {
	config Config
}

// Config holds configuration for the asset loader
type Config struct {
	// KeyThreshold is the per-channel value at or above which a pixel of a
	// color-only image counts as background
	KeyThreshold uint8
	// DownloadTimeout bounds remote product downloads
	DownloadTimeout time.Duration
	// UserAgent is sent with remote product downloads
	UserAgent string
}

// DefaultConfig returns the loader defaults
func DefaultConfig() Config {
	return Config{
		KeyThreshold:    240,
		DownloadTimeout: 10 * time.Second,
		UserAgent:       "virtual-tryon/1.0",
	}
}

// New creates a Loader with default configuration
func New() *Loader {
	return &Loader{config: DefaultConfig()}
}

// NewWithConfig creates a Loader with custom configuration
func NewWithConfig(config Config) *Loader {
	return &Loader{config: config}
}

// Load decodes a product image from a file path
func (l *Loader) Load(path string) (*Product, error) {
	img, err := l.decodeFile(path)
	if err != nil {
		return nil, err
	}
	return l.FromImage(img)
}

// LoadFromReader decodes a product image from a reader
func (l *Loader) LoadFromReader(reader io.Reader) (*Product, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %v", ErrAssetLoad, err)
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, err
	}
	return l.FromImage(img)
}

// LoadFromURL downloads and decodes a product image
func (l *Loader) LoadFromURL(imageURL string) (*Product, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", ErrAssetLoad, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported URL scheme: %s (only http and https are supported)", ErrAssetLoad, parsedURL.Scheme)
	}

	client := &http.Client{Timeout: l.config.DownloadTimeout}

	req, err := http.NewRequest(http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrAssetLoad, err)
	}
	if l.config.UserAgent != "" {
		req.Header.Set("User-Agent", l.config.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to download image: %v", ErrAssetLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: failed to download image: HTTP %s", ErrAssetLoad, resp.Status)
	}
	if contentType := resp.Header.Get("Content-Type"); !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("%w: URL does not point to an image (Content-Type: %s)", ErrAssetLoad, contentType)
	}

	return l.LoadFromReader(resp.Body)
}

// LoadSmart loads a product from either a file path or an http(s) URL
func (l *Loader) LoadSmart(source string) (*Product, error) {
	if IsRemote(source) {
		return l.LoadFromURL(source)
	}
	return l.Load(source)
}

// IsRemote reports whether a product source should be downloaded
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// FromImage derives a Product from an already decoded image
func (l *Loader) FromImage(img image.Image) (*Product, error) {
	layout, err := Classify(img)
	if err != nil {
		return nil, err
	}

	nrgba := imaging.Clone(img)
	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("%w: image has no pixels", ErrAssetLoad)
	}

	colorPlane := make([]byte, w*h*3)
	alphaPlane := make([]byte, w*h)
	thr := l.config.KeyThreshold

	for p := 0; p < w*h; p++ {
		r, g, bl, a := nrgba.Pix[p*4], nrgba.Pix[p*4+1], nrgba.Pix[p*4+2], nrgba.Pix[p*4+3]
		colorPlane[p*3] = bl
		colorPlane[p*3+1] = g
		colorPlane[p*3+2] = r

		switch layout {
		case LayoutColorAlpha:
			alphaPlane[p] = a
		case LayoutColor:
			if bl >= thr && g >= thr && r >= thr {
				alphaPlane[p] = 0
			} else {
				alphaPlane[p] = 255
			}
		case LayoutGray:
			alphaPlane[p] = 255
		}
	}

	return &Product{
		width:  w,
		height: h,
		layout: layout,
		color:  colorPlane,
		alpha:  alphaPlane,
	}, nil
}

func (l *Loader) decodeFile(path string) (image.Image, error) {
	if img, err := imaging.Open(path); err == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read product image %s: %v", ErrAssetLoad, path, err)
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// decodeBytes tries the registered decoders first, then the cgo WebP decoder
func decodeBytes(data []byte) (image.Image, error) {
	if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("%w: unknown or unsupported image encoding", ErrAssetLoad)
}
