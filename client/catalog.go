package client

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/creastudio/envelope"
)

// CatalogService reads the objective and visual style reference lists.
type CatalogService struct {
	c *Client
}

func (s *CatalogService) Objectives(ctx context.Context) *envelope.Response[ObjectiveList] {
	return fetchCatalog[ObjectiveList](ctx, s.c, pathObjectives, "catalog-objectives",
		"Objectives loaded successfully", "The server did not return valid objectives")
}

func (s *CatalogService) Styles(ctx context.Context) *envelope.Response[StyleList] {
	return fetchCatalog[StyleList](ctx, s.c, pathStyles, "catalog-styles",
		"Styles loaded successfully", "The server did not return valid styles")
}

func fetchCatalog[T any](ctx context.Context, c *Client, path, endpoint, okMessage, invalid string) *envelope.Response[T] {
	body, err := c.do(ctx, &request{method: http.MethodGet, path: path, endpoint: endpoint})
	if err != nil {
		return record(c, endpoint, translate[T](err))
	}
	resp := decodeBackend[T](body)
	if !resp.ok() {
		return record(c, endpoint, envelope.InvalidResponse[T](invalid))
	}
	return record(c, endpoint, envelope.Success(*resp.Data, okMessage, nil))
}

// LoadAll fetches both lists concurrently. It succeeds only when both do;
// otherwise the objectives failure takes precedence over the styles one.
func (s *CatalogService) LoadAll(ctx context.Context) *envelope.Response[Catalogs] {
	var (
		objectives *envelope.Response[ObjectiveList]
		styles     *envelope.Response[StyleList]
		g          errgroup.Group
	)
	g.Go(func() error {
		objectives = s.Objectives(ctx)
		return nil
	})
	g.Go(func() error {
		styles = s.Styles(ctx)
		return nil
	})
	_ = g.Wait()

	if !objectives.IsSuccess() {
		return envelope.Forward[Catalogs](objectives)
	}
	if !styles.IsSuccess() {
		return envelope.Forward[Catalogs](styles)
	}
	return envelope.Success(Catalogs{
		Objectives: objectives.Data.Objectives,
		Styles:     styles.Data.Styles,
	}, "Catalogs loaded successfully", nil)
}
