package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-sync-keeper/internal/config"
	"github.com/MKhiriev/go-sync-keeper/internal/logger"
	"github.com/MKhiriev/go-sync-keeper/internal/utils"
	"github.com/MKhiriev/go-sync-keeper/models"
)

const (
	pathConnect    = "/api/connect"
	pathDisconnect = "/api/disconnect"
	pathAnchor     = "/api/anchor"
	pathItems      = "/api/items/{type}"
	pathItem       = "/api/items/{type}/{id}"
)

type anchorResponse struct {
	Anchor string `json:"anchor"`
}

type itemsPage struct {
	Items         []models.Item `json:"items"`
	NextPageToken string        `json:"next_page_token"`
}

type putItemRequest struct {
	Format      string             `json:"format,omitempty"`
	Fingerprint models.Fingerprint `json:"fingerprint"`
	Payload     []byte             `json:"payload"`
}

type putItemResponse struct {
	Fingerprint models.Fingerprint `json:"fingerprint"`
}

type httpDeviceBridge struct {
	client *utils.HTTPClient

	logger *logger.Logger
}

// NewHTTPDeviceBridge constructs an HTTP/REST implementation of
// [DeviceBridge]. It normalises the base URL from cfg.HTTPAddress, bounds
// every request with cfg.RequestTimeout and signs request bodies with
// cfg.HashKey when it is set.
//
// Returns an error wrapping [ErrInvalidAddress] if cfg.HTTPAddress is empty
// or cannot be parsed as a URL.
func NewHTTPDeviceBridge(cfg config.Adapter, log *logger.Logger) (DeviceBridge, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	client := utils.NewHTTPClient().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHashKey(cfg.HashKey)

	return &httpDeviceBridge{client: client, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Connect implements [DeviceBridge]. It POSTs the member configuration to
// POST /api/connect. An empty configuration is sent as an empty JSON object.
func (b *httpDeviceBridge) Connect(ctx context.Context, memberConfig []byte) error {
	if len(memberConfig) == 0 {
		memberConfig = []byte("{}")
	}

	req, err := b.client.JSONRequest(ctx, memberConfig)
	if err != nil {
		return err
	}
	resp, err := req.Post(pathConnect)
	if err != nil {
		b.logger.Err(err).Str("func", "httpDeviceBridge.Connect").Msg("connect request failed")
		return fmt.Errorf("connect request: %w", err)
	}
	return mapHTTPError(resp)
}

// Disconnect implements [DeviceBridge]. It POSTs to POST /api/disconnect.
func (b *httpDeviceBridge) Disconnect(ctx context.Context) error {
	resp, err := b.client.Request(ctx).Post(pathDisconnect)
	if err != nil {
		return fmt.Errorf("disconnect request: %w", err)
	}
	return mapHTTPError(resp)
}

// Anchor implements [DeviceBridge]. It GETs GET /api/anchor.
func (b *httpDeviceBridge) Anchor(ctx context.Context) (string, error) {
	var out anchorResponse
	resp, err := b.client.Request(ctx).Get(pathAnchor)
	if err != nil {
		return "", fmt.Errorf("anchor request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		return "", err
	}
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("%w: decode anchor: %w", ErrInvalidResponse, err)
	}
	return out.Anchor, nil
}

// Items implements [DeviceBridge]. Pages are requested from
// GET /api/items/{type}?full=1&page_token=... only as the sequence is
// consumed; stopping the iteration stops paging.
func (b *httpDeviceBridge) Items(ctx context.Context, objectType models.ObjectType, opts models.ListOptions) iter.Seq2[models.Item, error] {
	return func(yield func(models.Item, error) bool) {
		token := ""
		for {
			page, err := b.listPage(ctx, objectType, opts, token)
			if err != nil {
				yield(models.Item{}, err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			if page.NextPageToken == "" {
				return
			}
			if page.NextPageToken == token {
				yield(models.Item{}, fmt.Errorf("%w: page token %q repeated", ErrInvalidResponse, token))
				return
			}
			token = page.NextPageToken
		}
	}
}

func (b *httpDeviceBridge) listPage(ctx context.Context, objectType models.ObjectType, opts models.ListOptions, token string) (itemsPage, error) {
	req := b.client.Request(ctx).SetPathParam("type", objectType.String())
	if opts.Full {
		req.SetQueryParam("full", "1")
	}
	if token != "" {
		req.SetQueryParam("page_token", token)
	}

	resp, err := req.Get(pathItems)
	if err != nil {
		b.logger.Err(err).
			Str("func", "httpDeviceBridge.listPage").
			Str("object_type", objectType.String()).
			Msg("list items request failed")
		return itemsPage{}, fmt.Errorf("list %s items: %w", objectType, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return itemsPage{}, fmt.Errorf("list %s items: %w", objectType, err)
	}

	var page itemsPage
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return itemsPage{}, fmt.Errorf("%w: decode %s items page: %w", ErrInvalidResponse, objectType, err)
	}
	return page, nil
}

// FetchPayload implements [DeviceBridge]. It GETs GET /api/items/{type}/{id}
// and returns the raw response body.
func (b *httpDeviceBridge) FetchPayload(ctx context.Context, objectType models.ObjectType, id models.ItemID) ([]byte, error) {
	resp, err := b.client.Request(ctx).
		SetPathParams(map[string]string{"type": objectType.String(), "id": string(id)}).
		Get(pathItem)
	if err != nil {
		return nil, fmt.Errorf("fetch %s payload %q: %w", objectType, id, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return nil, fmt.Errorf("fetch %s payload %q: %w", objectType, id, err)
	}
	return resp.Body(), nil
}

// Apply implements [DeviceBridge]. Added and Modified changes are PUT to
// PUT /api/items/{type}/{id}; Deleted changes are sent as
// DELETE /api/items/{type}/{id}, where 404 counts as already deleted.
func (b *httpDeviceBridge) Apply(ctx context.Context, change models.ChangeRecord) (models.ApplyResult, error) {
	params := map[string]string{"type": change.ObjectType.String(), "id": string(change.ID)}

	if change.Kind == models.Deleted {
		resp, err := b.client.Request(ctx).SetPathParams(params).Delete(pathItem)
		if err != nil {
			return models.ApplyResult{}, fmt.Errorf("delete %s item %q: %w", change.ObjectType, change.ID, err)
		}
		if err = mapHTTPError(resp); err != nil && !errors.Is(err, ErrNotFound) {
			return models.ApplyResult{}, fmt.Errorf("delete %s item %q: %w", change.ObjectType, change.ID, err)
		}
		return models.ApplyResult{}, nil
	}

	if change.Deferred {
		return models.ApplyResult{}, fmt.Errorf("put %s item %q: body was not fetched", change.ObjectType, change.ID)
	}

	req, err := b.client.JSONRequest(ctx, putItemRequest{
		Format:      change.Format,
		Fingerprint: change.Fingerprint,
		Payload:     change.Payload,
	})
	if err != nil {
		return models.ApplyResult{}, err
	}

	resp, err := req.SetPathParams(params).Put(pathItem)
	if err != nil {
		return models.ApplyResult{}, fmt.Errorf("put %s item %q: %w", change.ObjectType, change.ID, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.ApplyResult{}, fmt.Errorf("put %s item %q: %w", change.ObjectType, change.ID, err)
	}

	var out putItemResponse
	if body := resp.Body(); len(body) > 0 {
		if err = json.Unmarshal(body, &out); err != nil {
			return models.ApplyResult{}, fmt.Errorf("%w: decode put response: %w", ErrInvalidResponse, err)
		}
	}
	return models.ApplyResult{Fingerprint: out.Fingerprint}, nil
}
