// Package sheets wraps the Google Sheets API for the intake spreadsheet:
// a ranged read of the form-response rows and a structural row delete.
package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"github.com/MCTHIAS/CathPed/internal/config"
)

const (
	tabIDCacheKey      = "tab_id"
	tabIDCacheDuration = 15 * time.Minute
)

type Client struct {
	cfg config.SheetsConfig

	mu  sync.Mutex
	api *gsheets.Service

	// The numeric tab id is needed for structural deletes and only
	// changes if the tab is recreated, so it is cached.
	tabIDs *cache.Cache
}

func NewClient(cfg config.SheetsConfig) *Client {
	return &Client{
		cfg:    cfg,
		tabIDs: cache.New(tabIDCacheDuration, time.Hour),
	}
}

// service authenticates lazily so that missing credentials surface as a
// per-call error the intake service can degrade on, not a startup failure.
func (c *Client) service(ctx context.Context) (*gsheets.Service, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.api != nil {
		return c.api, nil
	}

	if c.cfg.CredentialsJSON == "" {
		return nil, fmt.Errorf("sheets credentials are not configured")
	}
	if c.cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is not configured")
	}

	api, err := gsheets.NewService(ctx,
		option.WithCredentialsJSON([]byte(c.cfg.CredentialsJSON)),
		option.WithScopes(gsheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build sheets service: %w", err)
	}

	c.api = api
	return c.api, nil
}

// Fetch returns all rows of the configured range as strings, in sheet
// order. The header row is included.
func (c *Client) Fetch(ctx context.Context) ([][]string, error) {
	api, err := c.service(ctx)
	if err != nil {
		return nil, err
	}

	readRange := fmt.Sprintf("%s!%s", c.cfg.SheetName, c.cfg.ReadRange)
	resp, err := api.Spreadsheets.Values.Get(c.cfg.SpreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read range %q: %w", readRange, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, raw := range resp.Values {
		row := make([]string, 0, len(raw))
		for _, cell := range raw {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DeleteRow issues a structural delete of the given zero-based row index
// on the intake tab. Subsequent rows shift up, exactly as in the sheet UI.
func (c *Client) DeleteRow(ctx context.Context, rowIndex int64) error {
	api, err := c.service(ctx)
	if err != nil {
		return err
	}

	tabID, err := c.tabID(ctx, api)
	if err != nil {
		return err
	}

	req := &gsheets.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheets.Request{{
			DeleteDimension: &gsheets.DeleteDimensionRequest{
				Range: &gsheets.DimensionRange{
					SheetId:    tabID,
					Dimension:  "ROWS",
					StartIndex: rowIndex,
					EndIndex:   rowIndex + 1,
				},
			},
		}},
	}

	if _, err := api.Spreadsheets.BatchUpdate(c.cfg.SpreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete row %d: %w", rowIndex, err)
	}
	return nil
}

func (c *Client) tabID(ctx context.Context, api *gsheets.Service) (int64, error) {
	if id, ok := c.tabIDs.Get(tabIDCacheKey); ok {
		return id.(int64), nil
	}

	spreadsheet, err := api.Spreadsheets.Get(c.cfg.SpreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.cfg.SheetName {
			c.tabIDs.Set(tabIDCacheKey, sheet.Properties.SheetId, cache.DefaultExpiration)
			return sheet.Properties.SheetId, nil
		}
	}

	return 0, fmt.Errorf("tab %q not found in spreadsheet", c.cfg.SheetName)
}
