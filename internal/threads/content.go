package threads

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

const (
	profileFields = "id,username,name,threads_profile_picture_url,threads_biography"
	contentFields = "id,media_product_type,media_type,shortcode,text,timestamp,username,permalink"
	replyFields   = "id,text,username,timestamp,permalink"
	insightMetric = "views,likes,replies,reposts,quotes"

	mediaTypeText = "TEXT"
)

// Profile is the connected account's public profile.
type Profile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Name              string `json:"name,omitempty"`
	ProfilePictureURL string `json:"threads_profile_picture_url,omitempty"`
	Biography         string `json:"threads_biography,omitempty"`
}

// ContentSummary is one item of the account's own content.
type ContentSummary struct {
	ID               string `json:"id"`
	MediaProductType string `json:"media_product_type,omitempty"`
	MediaType        string `json:"media_type,omitempty"`
	Shortcode        string `json:"shortcode,omitempty"`
	Text             string `json:"text,omitempty"`
	Timestamp        string `json:"timestamp,omitempty"`
	Username         string `json:"username,omitempty"`
	Permalink        string `json:"permalink,omitempty"`
}

// ReplySummary is one reply under a piece of content.
type ReplySummary struct {
	ID        string `json:"id"`
	Text      string `json:"text,omitempty"`
	Username  string `json:"username,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Permalink string `json:"permalink,omitempty"`
}

// Metric is one raw insights entry. Values is left undecoded.
type Metric struct {
	Name   string          `json:"name"`
	Values json.RawMessage `json:"values"`
}

type idResponse struct {
	ID string `json:"id"`
}

type containerRequest struct {
	MediaType string `json:"media_type"`
	Text      string `json:"text"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

type publishRequest struct {
	CreationID string `json:"creation_id"`
}

// FetchProfile returns the profile of the token's account.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	raw, err := c.Execute(ctx, http.MethodGet, "/me", nil, url.Values{"fields": {profileFields}})
	if err != nil {
		return nil, err
	}

	var p Profile
	if err := decode(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListMyContent returns the account's content in the order the API returns it.
func (c *Client) ListMyContent(ctx context.Context, accountID string) ([]ContentSummary, error) {
	path := fmt.Sprintf("/v1.0/%s/threads", url.PathEscape(accountID))
	raw, err := c.Execute(ctx, http.MethodGet, path, nil, url.Values{"fields": {contentFields}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []ContentSummary `json:"data"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// PublishText creates a TEXT container and publishes it, returning the media id.
func (c *Client) PublishText(ctx context.Context, text, accountID string) (string, error) {
	return c.publish(ctx, accountID, containerRequest{
		MediaType: mediaTypeText,
		Text:      text,
	})
}

// ReplyTo publishes text as a reply to parentID, returning the reply's media id.
func (c *Client) ReplyTo(ctx context.Context, text, parentID, accountID string) (string, error) {
	return c.publish(ctx, accountID, containerRequest{
		MediaType: mediaTypeText,
		Text:      text,
		ReplyToID: parentID,
	})
}

// publish runs the container -> publish protocol. A container that fails to
// publish is left behind on the remote side.
func (c *Client) publish(ctx context.Context, accountID string, container containerRequest) (string, error) {
	base := fmt.Sprintf("/v1.0/%s", url.PathEscape(accountID))

	raw, err := c.Execute(ctx, http.MethodPost, base+"/threads", container, nil)
	if err != nil {
		return "", err
	}
	var created idResponse
	if err := decode(raw, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", classify(0, nil, fmt.Errorf("container response has no id"))
	}

	raw, err = c.Execute(ctx, http.MethodPost, base+"/threads_publish", publishRequest{CreationID: created.ID}, nil)
	if err != nil {
		slog.Warn("container created but publish failed",
			"creation_id", created.ID,
			"error", err,
		)
		return "", err
	}
	var published idResponse
	if err := decode(raw, &published); err != nil {
		return "", err
	}
	if published.ID == "" {
		return "", classify(0, nil, fmt.Errorf("publish response has no id"))
	}

	slog.Info("published to Threads",
		"creation_id", created.ID,
		"media_id", published.ID,
		"reply_to", container.ReplyToID,
	)

	return published.ID, nil
}

// DeleteContent is a no-op: the API offers no delete call usable here.
// A nil error says nothing about the remote state of contentID.
func (c *Client) DeleteContent(ctx context.Context, contentID string) error {
	slog.Debug("remote delete not supported, skipping", "media_id", contentID)
	return nil
}

// ListReplies returns the replies under contentID.
func (c *Client) ListReplies(ctx context.Context, contentID string) ([]ReplySummary, error) {
	path := fmt.Sprintf("/%s/replies", url.PathEscape(contentID))
	raw, err := c.Execute(ctx, http.MethodGet, path, nil, url.Values{"fields": {replyFields}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []ReplySummary `json:"data"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// FetchInsights returns the raw metric entries for contentID.
func (c *Client) FetchInsights(ctx context.Context, contentID string) ([]Metric, error) {
	path := fmt.Sprintf("/%s/insights", url.PathEscape(contentID))
	raw, err := c.Execute(ctx, http.MethodGet, path, nil, url.Values{"metric": {insightMetric}})
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []Metric `json:"data"`
	}
	if err := decode(raw, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}
