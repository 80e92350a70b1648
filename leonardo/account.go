package leonardo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const defaultListLimit = 10

// GetUserInfo returns the account that owns the configured API key, including
// the token balances generations are billed against.
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfo, error) {
	var uResp userDetailsResp
	if err := c.doJSON(ctx, opGetUser, http.MethodGet, "/me", nil, &uResp, c.cfg.Timeout); err != nil {
		return nil, err
	}
	if len(uResp.UserDetails) == 0 {
		return nil, &Error{Code: ErrBadResponse, Message: "leonardo: user response missing user_details"}
	}

	d := uResp.UserDetails[0]
	return &UserInfo{
		UserID:                d.User.ID,
		Username:              d.User.Username,
		APISubscriptionTokens: d.APISubscriptionTokens,
		APIPaidTokens:         d.APIPaidTokens,
		TokenRenewalDate:      d.TokenRenewalDate,
	}, nil
}

// ListGenerations returns one page of the user's generation history in the
// order the API reports it (newest first). Negative offsets are treated as 0
// and a non-positive limit falls back to the default page size.
func (c *Client) ListGenerations(ctx context.Context, userID string, offset, limit int) ([]GenerationListItem, error) {
	if userID == "" {
		return nil, &Error{Code: ErrInvalidRequest, Message: "leonardo: user id is required"}
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := url.Values{}
	query.Set("offset", fmt.Sprintf("%d", offset))
	query.Set("limit", fmt.Sprintf("%d", limit))
	path := "/generations/user/" + userID + "?" + query.Encode()

	var lResp listGenerationsResp
	if err := c.doJSON(ctx, opListGenerations, http.MethodGet, path, nil, &lResp, c.cfg.Timeout); err != nil {
		return nil, err
	}

	items := make([]GenerationListItem, 0, len(lResp.Generations))
	for _, g := range lResp.Generations {
		items = append(items, GenerationListItem{
			ID:        g.ID,
			Status:    g.Status,
			CreatedAt: g.CreatedAt,
			Prompt:    g.Prompt,
			ImageURLs: collectURLs(g.GeneratedImages),
		})
	}
	return items, nil
}

// DeleteGeneration removes a generation and its images from the remote
// account. The API echoes the deleted id; a missing or mismatched echo is a
// protocol failure.
func (c *Client) DeleteGeneration(ctx context.Context, generationID string) error {
	if generationID == "" {
		return &Error{Code: ErrInvalidRequest, Message: "leonardo: generation id is required"}
	}

	var dResp deleteGenerationResp
	if err := c.doJSON(ctx, opDeleteGeneration, http.MethodDelete, "/generations/"+generationID, nil, &dResp, c.cfg.Timeout); err != nil {
		return err
	}
	if dResp.DeleteGenerationsByPK == nil || dResp.DeleteGenerationsByPK.ID != generationID {
		return &Error{
			Code:    ErrBadResponse,
			Message: fmt.Sprintf("leonardo: delete response did not echo generation %s", generationID),
		}
	}
	return nil
}
