package profile

import (
	"github.com/VeeralakshmiV/learnwise-profile-nexus-sub000/core"
)

type ServiceMock struct {
	*Service
}

// NewServiceMock returns a Service whose side-effecting operations run
// synchronously so tests can observe them.
func NewServiceMock(repo Repository, mailSvc core.EmailService, conf *core.Config) *ServiceMock {
	return &ServiceMock{
		Service: NewService(repo, mailSvc, conf),
	}
}

func (svc *ServiceMock) RequestPasswordReset(email string) error {
	prof, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(prof)
	return nil
}
