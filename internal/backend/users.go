package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

const avatarField = "avatar"

func (c *Client) ListUsers(ctx context.Context, page, limit int) (types.Page[types.User], error) {
	raw, err := c.list(ctx, "/user/all-user", page, limit)
	if err != nil {
		return types.Page[types.User]{}, err
	}
	return decodePage[types.User](raw, "users")
}

func (c *Client) GetUser(ctx context.Context, id string) (types.User, error) {
	var out types.User
	_, err := c.call(ctx, http.MethodGet, "/user/single-user/"+url.PathEscape(id), nil, &out)
	return out, err
}

// UpdateUser saves a profile. The endpoint takes the id in the body, not the path.
func (c *Client) UpdateUser(ctx context.Context, f types.ProfileForm, avatar *types.Upload) (types.User, error) {
	fields := map[string]string{
		"id":       f.ID,
		"name":     f.Name,
		"username": f.Username,
		"email":    f.Email,
		"phone":    f.Phone,
	}
	if f.DateOfBirth != "" {
		fields["dateOfBirth"] = f.DateOfBirth
	}
	if f.Gender != "" {
		fields["gender"] = f.Gender
	}

	var out types.User
	_, err := c.call(ctx, http.MethodPut, "/user/update", multipart(fields, avatarField, avatar), &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/user/delete-user/"+url.PathEscape(id), nil, nil)
	return err
}
