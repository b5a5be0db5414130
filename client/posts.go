package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/hrygo/creastudio/cache"
	"github.com/hrygo/creastudio/envelope"
)

// PostService browses and deletes the generation history. Single post
// lookups are served from a short-lived LRU.
type PostService struct {
	c     *Client
	cache *cache.LRU[int64, Post]
}

// List returns one page of history, newest first as the backend orders it.
func (s *PostService) List(ctx context.Context, page, perPage int) *envelope.Response[PostPage] {
	return s.ListFiltered(ctx, PostFilter{Page: page, PerPage: perPage})
}

// ListFiltered returns one page of history matching f.
func (s *PostService) ListFiltered(ctx context.Context, f PostFilter) *envelope.Response[PostPage] {
	const op = "posts-list"
	body, err := s.c.do(ctx, &request{
		method:   http.MethodGet,
		path:     pathPosts,
		query:    f.values(),
		endpoint: op,
	})
	if err != nil {
		return record(s.c, op, translate(err,
			notFound[PostPage]("Posts", "There are no posts available")))
	}
	resp := decodeBackend[PostPage](body)
	if !resp.ok() {
		return record(s.c, op, envelope.InvalidResponse[PostPage]("The server did not return valid posts"))
	}
	for _, p := range resp.Data.Posts {
		s.cache.Set(p.ID, p)
	}
	pg := resp.Data.Pagination
	meta := &envelope.Meta{
		Total:   pg.Total,
		Page:    pg.Page,
		Limit:   pg.PerPage,
		HasNext: pg.HasNext,
		HasPrev: pg.HasPrev,
	}
	return record(s.c, op, envelope.Success(*resp.Data, "Posts loaded successfully", meta))
}

func (f PostFilter) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	page, perPage := f.Page, f.PerPage
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	set("status", f.Status)
	set("platform", f.Platform)
	set("objective", f.Objective)
	set("style", f.Style)
	set("search", f.Search)
	set("start_date", f.StartDate)
	set("end_date", f.EndDate)
	set("sort_by", f.SortBy)
	set("sort_order", f.SortOrder)
	v.Set("page", strconv.Itoa(page))
	v.Set("per_page", strconv.Itoa(perPage))
	return v
}

// Get returns a single post.
func (s *PostService) Get(ctx context.Context, id int64) *envelope.Response[Post] {
	const op = "posts-get"
	if p, ok := s.cache.Get(id); ok {
		s.c.metrics.RecordCacheHit("post")
		return record(s.c, op, envelope.Success(p, "Post loaded successfully", nil))
	}
	s.c.metrics.RecordCacheMiss("post")

	body, err := s.c.do(ctx, &request{method: http.MethodGet, path: postPath(id), endpoint: op})
	if err != nil {
		return record(s.c, op, translate(err,
			notFound[Post]("Post", "The requested post does not exist")))
	}
	resp := decodeBackend[Post](body)
	if !resp.ok() {
		return record(s.c, op, envelope.InvalidResponse[Post]("The server did not return a valid post"))
	}
	s.cache.Set(id, *resp.Data)
	return record(s.c, op, envelope.Success(*resp.Data, "Post loaded successfully", nil))
}

// Delete removes a post and drops it from the lookup cache.
func (s *PostService) Delete(ctx context.Context, id int64) *envelope.Response[struct{}] {
	const op = "posts-delete"
	s.cache.Remove(id)

	body, err := s.c.do(ctx, &request{method: http.MethodDelete, path: postPath(id), endpoint: op})
	if err != nil {
		return record(s.c, op, translate(err,
			notFound[struct{}]("Post", "The post you are trying to delete does not exist")))
	}
	resp := decodeBackend[struct{}](body)
	if resp.Success == nil || !*resp.Success {
		return record(s.c, op, envelope.InvalidResponse[struct{}]("The server did not confirm the deletion"))
	}
	return record(s.c, op, envelope.Success(struct{}{}, "Post deleted successfully", nil))
}
