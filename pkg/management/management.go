// Package management provides the Management API client: flat list calls
// for accounts, web properties, profiles and segments, plus lookup by id.
package management

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/analytics-tools/ga-reporting-client/pkg/transport"
)

// ErrNotFound indicates a lookup by id matched nothing in the listing.
var ErrNotFound = errors.New("not found")

// Account is one Analytics account visible to the credentials.
type Account struct {
	ID   string `json:"id"`
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// Webproperty is one web property under an account.
type Webproperty struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	WebsiteURL string `json:"websiteUrl"`
}

// Profile is one reporting view under a web property. Profile ids are the
// scope ids used in report queries.
type Profile struct {
	ID       string `json:"id"`
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	ViewType string `json:"type"`
}

// Segment is one saved or built-in segment.
type Segment struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	SegmentID  string `json:"segmentId"`
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// listing is the envelope the Management API wraps every list response in.
type listing[T any] struct {
	Kind         string `json:"kind"`
	Username     string `json:"username"`
	TotalResults int    `json:"totalResults"`
	Items        []T    `json:"items"`
}

// List carries one management listing: the kind tag and authorized user the
// API echoed, and the items in API order.
type List[T any] struct {
	Kind     string
	Username string
	Items    []T
}

// Client is the Management API client. Every operation is a single
// unpaginated list call; lookups filter the listing client-side.
type Client struct {
	api *transport.Client
}

// NewClient creates a management client on top of the shared transport.
func NewClient(api *transport.Client) *Client {
	return &Client{api: api}
}

func listPath[T any](ctx context.Context, c *Client, path string) (*List[T], error) {
	var envelope listing[T]
	if err := c.api.GetJSON(ctx, path, url.Values{}, &envelope); err != nil {
		return nil, err
	}
	return &List[T]{
		Kind:     envelope.Kind,
		Username: envelope.Username,
		Items:    envelope.Items,
	}, nil
}

// Accounts lists the accounts visible to the credentials.
func (c *Client) Accounts(ctx context.Context) (*List[Account], error) {
	return listPath[Account](ctx, c, "/management/accounts")
}

// Account returns the account with the given id.
func (c *Client) Account(ctx context.Context, accountID string) (*Account, error) {
	accounts, err := c.Accounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts.Items {
		if accounts.Items[i].ID == accountID {
			return &accounts.Items[i], nil
		}
	}
	return nil, fmt.Errorf("account %s: %w", accountID, ErrNotFound)
}

// Webproperties lists the web properties under an account.
func (c *Client) Webproperties(ctx context.Context, accountID string) (*List[Webproperty], error) {
	path := fmt.Sprintf("/management/accounts/%s/webproperties", url.PathEscape(accountID))
	return listPath[Webproperty](ctx, c, path)
}

// Webproperty returns the web property with the given id.
func (c *Client) Webproperty(ctx context.Context, accountID, webpropertyID string) (*Webproperty, error) {
	properties, err := c.Webproperties(ctx, accountID)
	if err != nil {
		return nil, err
	}
	for i := range properties.Items {
		if properties.Items[i].ID == webpropertyID {
			return &properties.Items[i], nil
		}
	}
	return nil, fmt.Errorf("webproperty %s: %w", webpropertyID, ErrNotFound)
}

// Profiles lists the profiles (reporting views) under a web property.
func (c *Client) Profiles(ctx context.Context, accountID, webpropertyID string) (*List[Profile], error) {
	path := fmt.Sprintf("/management/accounts/%s/webproperties/%s/profiles",
		url.PathEscape(accountID), url.PathEscape(webpropertyID))
	return listPath[Profile](ctx, c, path)
}

// Profile returns the profile with the given id.
func (c *Client) Profile(ctx context.Context, accountID, webpropertyID, profileID string) (*Profile, error) {
	profiles, err := c.Profiles(ctx, accountID, webpropertyID)
	if err != nil {
		return nil, err
	}
	for i := range profiles.Items {
		if profiles.Items[i].ID == profileID {
			return &profiles.Items[i], nil
		}
	}
	return nil, fmt.Errorf("profile %s: %w", profileID, ErrNotFound)
}

// Segments lists the segments visible to the credentials.
func (c *Client) Segments(ctx context.Context) (*List[Segment], error) {
	return listPath[Segment](ctx, c, "/management/segments")
}
