package qrcode

//go:generate mockgen -source=qrcode.go -destination=../../usecase/mocks/qrcode_mock.go -package=mocks

// QRData is the payload scanned by the Swish app to open an m-commerce payment.
type QRData struct {
	RequestToken string
}

// Content is the string encoded in the code.
func (d QRData) Content() string {
	return "D" + d.RequestToken
}

type Generator interface {
	Generate(data QRData) ([]byte, error)
}
