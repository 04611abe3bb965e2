// Package gmail implements the mailbox over the Gmail API. It finds trigger
// emails, relabels them once processed and sends run reports.
package gmail

import (
	"context"

	"google.golang.org/api/gmail/v1"
)

// user is the Gmail alias for the authenticated account.
const user = "me"

// API is the subset of the Gmail API the mailbox relies on.
type API interface {
	ListMessages(ctx context.Context, query, pageToken string) (*gmail.ListMessagesResponse, error)
	GetMessage(ctx context.Context, id string) (*gmail.Message, error)
	ModifyMessage(ctx context.Context, id string, req *gmail.ModifyMessageRequest) error
	SendMessage(ctx context.Context, msg *gmail.Message) error
	ListLabels(ctx context.Context) ([]*gmail.Label, error)
	CreateLabel(ctx context.Context, label *gmail.Label) (*gmail.Label, error)
}

// serviceAPI adapts *gmail.Service to API.
type serviceAPI struct {
	svc *gmail.Service
}

// Verify interface compliance.
var _ API = (*serviceAPI)(nil)

func (a *serviceAPI) ListMessages(ctx context.Context, query, pageToken string) (*gmail.ListMessagesResponse, error) {
	call := a.svc.Users.Messages.List(user).Q(query).Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	return call.Do()
}

func (a *serviceAPI) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	return a.svc.Users.Messages.Get(user, id).Format("minimal").Context(ctx).Do()
}

func (a *serviceAPI) ModifyMessage(ctx context.Context, id string, req *gmail.ModifyMessageRequest) error {
	_, err := a.svc.Users.Messages.Modify(user, id, req).Context(ctx).Do()
	return err
}

func (a *serviceAPI) SendMessage(ctx context.Context, msg *gmail.Message) error {
	_, err := a.svc.Users.Messages.Send(user, msg).Context(ctx).Do()
	return err
}

func (a *serviceAPI) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	resp, err := a.svc.Users.Labels.List(user).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

func (a *serviceAPI) CreateLabel(ctx context.Context, label *gmail.Label) (*gmail.Label, error) {
	return a.svc.Users.Labels.Create(user, label).Context(ctx).Do()
}
