package qrgenerator

import (
	qr "github.com/skip2/go-qrcode"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/qrcode"
)

type Generator struct {
	size int
}

func NewGenerator(size int) *Generator {
	return &Generator{size: size}
}

func (g *Generator) Generate(data qrcode.QRData) ([]byte, error) {
	return qr.Encode(data.Content(), qr.Medium, g.size)
}
