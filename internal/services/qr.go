package services

import (
	"github.com/sirupsen/logrus"
	"github.com/skip2/go-qrcode"

	"xui-vpn-bot/internal/constants"
)

// QRService renders connection links as QR code images
type QRService struct {
	logger *logrus.Logger
}

// NewQRService creates a new QR code service
func NewQRService(logger *logrus.Logger) *QRService {
	return &QRService{
		logger: logger,
	}
}

// GenerateQR generates a PNG QR code for the given link
func (s *QRService) GenerateQR(link string) ([]byte, error) {
	s.logger.Debugf("Generating QR code for link: %s", link)

	qr, err := qrcode.Encode(link, qrcode.Medium, constants.QRCodeSize)
	if err != nil {
		s.logger.Errorf("Failed to generate QR code: %v", err)
		return nil, err
	}

	return qr, nil
}
