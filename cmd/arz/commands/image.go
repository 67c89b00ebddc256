package commands

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const defaultMaxImageMB = 10

// loadImage returns src unchanged when it is already a URL or data URI; otherwise it reads the
// file, checks that it is an image no larger than maxMB and encodes it as a data URI.
func loadImage(src string, maxMB int) (string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") || strings.HasPrefix(src, "data:") {
		return src, nil
	}
	if maxMB <= 0 {
		maxMB = defaultMaxImageMB
	}
	fi, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if fi.IsDir() {
		return "", fmt.Errorf("%s is a directory", src)
	}
	if fi.Size() > int64(maxMB)<<20 {
		return "", fmt.Errorf("image %s is larger than %d MB", src, maxMB)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return dataURI(data)
}

// dataURI encodes data as a base64 data URI after confirming its type is an image.
func dataURI(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("unsupported file type %s, please select an image", mt.String())
	}
	return "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
