package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/wealthocean/tradepanel/errs"
	"github.com/wealthocean/tradepanel/internal/schema"
)

// Clients lists the managed broker accounts for the current user.
func (c *Client) Clients(ctx context.Context) ([]schema.Client, error) {
	var resp schema.ClientList
	if err := c.do(ctx, "rest/clients", http.MethodGet, "/clients", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Clients == nil {
		resp.Clients = []schema.Client{}
	}
	return resp.Clients, nil
}

// AddClient registers a broker account.
func (c *Client) AddClient(ctx context.Context, client schema.Client) (schema.OpStatus, error) {
	if strings.TrimSpace(client.ClientID) == "" {
		return schema.OpStatus{}, errs.New("rest/clients_add", errs.CodeInvalid, errs.WithMessage("client id required"))
	}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/clients_add", http.MethodPost, "/clients/add", nil, client, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// EditClient updates a broker account.
func (c *Client) EditClient(ctx context.Context, client schema.Client) (schema.OpStatus, error) {
	if strings.TrimSpace(client.ClientID) == "" {
		return schema.OpStatus{}, errs.New("rest/clients_edit", errs.CodeInvalid, errs.WithMessage("client id required"))
	}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/clients_edit", http.MethodPost, "/clients/edit", nil, client, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// DeleteClient removes a broker account.
func (c *Client) DeleteClient(ctx context.Context, broker, clientID string) (schema.OpStatus, error) {
	if strings.TrimSpace(clientID) == "" {
		return schema.OpStatus{}, errs.New("rest/clients_delete", errs.CodeInvalid, errs.WithMessage("client id required"))
	}
	body := map[string]string{"broker": broker, "client_id": clientID}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/clients_delete", http.MethodPost, "/clients/delete", nil, body, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// Groups lists the order fan-out groups.
func (c *Client) Groups(ctx context.Context) ([]schema.Group, error) {
	var resp schema.GroupList
	if err := c.do(ctx, "rest/groups", http.MethodGet, "/groups", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Groups == nil {
		resp.Groups = []schema.Group{}
	}
	return resp.Groups, nil
}

// AddGroup creates a fan-out group.
func (c *Client) AddGroup(ctx context.Context, group schema.Group) (schema.OpStatus, error) {
	if strings.TrimSpace(group.Name) == "" {
		return schema.OpStatus{}, errs.New("rest/add_group", errs.CodeInvalid, errs.WithMessage("group name required"))
	}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/add_group", http.MethodPost, "/add_group", nil, group, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// EditGroup updates a fan-out group.
func (c *Client) EditGroup(ctx context.Context, group schema.Group) (schema.OpStatus, error) {
	if strings.TrimSpace(group.GroupID) == "" && strings.TrimSpace(group.Name) == "" {
		return schema.OpStatus{}, errs.New("rest/edit_group", errs.CodeInvalid, errs.WithMessage("group identity required"))
	}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/edit_group", http.MethodPost, "/edit_group", nil, group, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// DeleteGroup removes a fan-out group by id or name.
func (c *Client) DeleteGroup(ctx context.Context, idOrName string) (schema.OpStatus, error) {
	if strings.TrimSpace(idOrName) == "" {
		return schema.OpStatus{}, errs.New("rest/delete_group", errs.CodeInvalid, errs.WithMessage("group identity required"))
	}
	body := map[string]string{"group_id": idOrName}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/delete_group", http.MethodPost, "/delete_group", nil, body, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// CopySetups lists the copy-trading configurations.
func (c *Client) CopySetups(ctx context.Context) ([]schema.CopySetup, error) {
	var resp schema.CopySetupList
	if err := c.do(ctx, "rest/list_copy_setups", http.MethodGet, "/list_copytrading_setups", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Setups == nil {
		resp.Setups = []schema.CopySetup{}
	}
	return resp.Setups, nil
}

// SaveCopySetup creates or replaces a copy-trading configuration.
func (c *Client) SaveCopySetup(ctx context.Context, setup schema.CopySetup) (schema.OpStatus, error) {
	if strings.TrimSpace(setup.Name) == "" {
		return schema.OpStatus{}, errs.New("rest/save_copy_setup", errs.CodeInvalid, errs.WithMessage("setup name required"))
	}
	if strings.TrimSpace(setup.Leader) == "" {
		return schema.OpStatus{}, errs.New("rest/save_copy_setup", errs.CodeInvalid, errs.WithMessage("leader account required"))
	}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/save_copy_setup", http.MethodPost, "/save_copytrading_setup", nil, setup, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// EnableCopy turns a copy-trading setup on.
func (c *Client) EnableCopy(ctx context.Context, idOrName string) (schema.OpStatus, error) {
	return c.toggleCopy(ctx, "rest/enable_copy", "/enable_copy", idOrName)
}

// DisableCopy turns a copy-trading setup off.
func (c *Client) DisableCopy(ctx context.Context, idOrName string) (schema.OpStatus, error) {
	return c.toggleCopy(ctx, "rest/disable_copy", "/disable_copy", idOrName)
}

func (c *Client) toggleCopy(ctx context.Context, op, path, idOrName string) (schema.OpStatus, error) {
	if strings.TrimSpace(idOrName) == "" {
		return schema.OpStatus{}, errs.New(op, errs.CodeInvalid, errs.WithMessage("setup identity required"))
	}
	body := map[string]string{"setup_id": idOrName}
	var status schema.OpStatus
	if err := c.do(ctx, op, http.MethodPost, path, nil, body, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}

// DeleteCopySetup removes a copy-trading configuration.
func (c *Client) DeleteCopySetup(ctx context.Context, idOrName string) (schema.OpStatus, error) {
	if strings.TrimSpace(idOrName) == "" {
		return schema.OpStatus{}, errs.New("rest/delete_copy_setup", errs.CodeInvalid, errs.WithMessage("setup identity required"))
	}
	body := map[string]string{"setup_id": idOrName}
	var status schema.OpStatus
	if err := c.do(ctx, "rest/delete_copy_setup", http.MethodPost, "/delete_copy_setup", nil, body, &status); err != nil {
		return schema.OpStatus{}, err
	}
	return status, nil
}
