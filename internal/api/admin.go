package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// AdminClient wraps the privileged administration endpoints: the
// cross-module dashboard aggregate and user management.
type AdminClient struct {
	*Client
}

func NewAdminClient(c *Client) *AdminClient {
	return &AdminClient{Client: c}
}

// Dashboard fetches the privileged cross-module aggregate. Elevated roles
// only; everyone else receives a 403 which the aggregator treats as a
// fallback trigger, not a failure.
func (a *AdminClient) Dashboard(ctx context.Context) (json.RawMessage, error) {
	var out json.RawMessage
	if err := a.get(ctx, "/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	RoleName string `json:"role_name"`
	IsActive bool   `json:"is_active"`
}

type UserFilter struct {
	Search string
	Active *bool
}

func (f UserFilter) values() url.Values {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Active != nil {
		q.Set("active", strconv.FormatBool(*f.Active))
	}
	return q
}

func (a *AdminClient) Users(ctx context.Context, filter UserFilter) ([]User, error) {
	var out []User
	if err := a.get(ctx, "/admin/users", filter.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *AdminClient) CreateUser(ctx context.Context, u User) (User, error) {
	var out User
	if err := a.post(ctx, "/admin/users", nil, u, &out); err != nil {
		return User{}, err
	}
	a.wroteThrough(OpUserWrite)
	return out, nil
}

func (a *AdminClient) DeleteUser(ctx context.Context, id int64) error {
	if err := a.delete(ctx, fmt.Sprintf("/admin/users/%d", id)); err != nil {
		return err
	}
	a.wroteThrough(OpUserWrite)
	return nil
}

func (a *AdminClient) ActivateUser(ctx context.Context, id int64) (User, error) {
	var out User
	if err := a.put(ctx, fmt.Sprintf("/admin/users/%d/activate", id), nil, nil, &out); err != nil {
		return User{}, err
	}
	a.wroteThrough(OpUserWrite)
	return out, nil
}

func (a *AdminClient) UpdateUserRole(ctx context.Context, id, roleID int64) (User, error) {
	q := url.Values{}
	q.Set("role_id", strconv.FormatInt(roleID, 10))
	var out User
	if err := a.put(ctx, fmt.Sprintf("/admin/users/%d/role", id), q, nil, &out); err != nil {
		return User{}, err
	}
	a.wroteThrough(OpUserWrite)
	return out, nil
}

func (a *AdminClient) Roles(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	if err := a.get(ctx, "/admin/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
