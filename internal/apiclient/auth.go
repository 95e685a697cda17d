package apiclient

import (
	"context"
	"net/http"

	"bookshelf/internal/auth"
	"bookshelf/internal/user"
)

func (c *Client) Register(ctx context.Context, email, username, password string) (user.User, error) {
	in := auth.RegisterReq{Email: email, Username: username, Password: password}
	var u user.User
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", in, false, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (auth.Token, error) {
	in := auth.LoginReq{Email: email, Password: password}
	var tok auth.Token
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", in, false, &tok); err != nil {
		return auth.Token{}, err
	}
	return tok, nil
}

// Me returns the user behind the identity in ctx.
func (c *Client) Me(ctx context.Context) (user.User, error) {
	var u user.User
	if err := c.doJSON(ctx, http.MethodGet, "/me", nil, true, &u); err != nil {
		return user.User{}, err
	}
	return u, nil
}
