package enrollment

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/batch"
)

type serviceMock struct {
	service
}

func NewServiceMock(
	conf *core.Config,
	repo Repository,
	drafts DraftStore,
	batchSvc batch.Service,
	mailSvc core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) Service {
	return &serviceMock{
		service: *newService(conf, repo, drafts, batchSvc, mailSvc, validate, logger),
	}
}

func (svc *serviceMock) Submit(ctx context.Context, id string) (Enrollment, error) {
	enr, b, err := svc.submit(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	// run synchronously
	svc.sendConfirmationMail(enr, b)
	return enr, nil
}
