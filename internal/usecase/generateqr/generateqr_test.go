package generateqr_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Xausdorf/swish-pay-hub/internal/domain/entity"
	"github.com/Xausdorf/swish-pay-hub/internal/domain/qrcode"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/generateqr"
	"github.com/Xausdorf/swish-pay-hub/internal/usecase/mocks"
)

func TestGenerateQRUseCase_Execute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)
	generator := mocks.NewMockGenerator(ctrl)

	p := entity.NewPaymentRequest("AB23", "", "c28a4061470f4af48973bd2a4642b4fa", entity.PaymentDetails{Amount: decimal.NewFromInt(100)})
	uow.EXPECT().Payments().Return(paymentRepo)
	paymentRepo.EXPECT().FindByID(gomock.Any(), p.ID()).Return(p, nil)
	generator.EXPECT().Generate(qrcode.QRData{RequestToken: "c28a4061470f4af48973bd2a4642b4fa"}).Return([]byte("png"), nil)

	png, err := generateqr.NewUseCase(uow, generator).Execute(context.Background(), p.ID())

	require.NoError(t, err)
	assert.Equal(t, []byte("png"), png)
}

func TestGenerateQRUseCase_Execute_NoToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	uow := mocks.NewMockUnitOfWork(ctrl)
	paymentRepo := mocks.NewMockPaymentRepository(ctrl)

	p := entity.NewPaymentRequest("AB23", "", "", entity.PaymentDetails{Amount: decimal.NewFromInt(100)})
	uow.EXPECT().Payments().Return(paymentRepo)
	paymentRepo.EXPECT().FindByID(gomock.Any(), p.ID()).Return(p, nil)

	_, err := generateqr.NewUseCase(uow, mocks.NewMockGenerator(ctrl)).Execute(context.Background(), p.ID())

	require.ErrorIs(t, err, entity.ErrNoRequestToken)
}

func TestQRData_Content(t *testing.T) {
	assert.Equal(t, "Dc28a4061470f4af48973bd2a4642b4fa", qrcode.QRData{RequestToken: "c28a4061470f4af48973bd2a4642b4fa"}.Content())
}
