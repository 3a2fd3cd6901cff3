package qrcode

import (
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MaxSize     = 1024
)

// FormLink คืน URL ของหน้าแบบฟอร์มฝั่ง frontend
func FormLink(frontendURL, formID string) string {
	return strings.TrimRight(frontendURL, "/") + "/forms/" + url.PathEscape(formID)
}

// GenerateQRCode สร้าง QR Code จากข้อมูลที่กำหนด และคืนค่าเป็น PNG
func GenerateQRCode(data string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		return nil, errors.Wrap(err, "encode qr code")
	}
	return png, nil
}
