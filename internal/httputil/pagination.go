package httputil

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Query parameters shared by every list endpoint.
const (
	SkipTokenParam  = "$skiptoken"
	MaxResultsParam = "maxresults"
	APIVersionParam = "api-version"

	DefaultAPIVersion = "7.4"
	DefaultMaxResults = 25
	MaxMaxResults     = 25
)

// ListResponse is the vault list envelope.
type ListResponse[T any] struct {
	Value    []T     `json:"value"`
	NextLink *string `json:"nextLink"`
}

// NewListResponse builds a list envelope. An empty link renders as null.
func NewListResponse[T any](items []T, nextLink string) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	resp := ListResponse[T]{Value: items}
	if nextLink != "" {
		resp.NextLink = &nextLink
	}
	return resp
}

// ParseMaxResults reads the maxresults query parameter (default 25, range 1..25).
func ParseMaxResults(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery(MaxResultsParam)
	if !ok || raw == "" {
		return DefaultMaxResults, nil
	}

	take, err := strconv.Atoi(raw)
	if err != nil || take < 1 || take > MaxMaxResults {
		return 0, fmt.Errorf("invalid maxresults parameter: must be between 1 and %d", MaxMaxResults)
	}
	return take, nil
}

// SkipToken returns the cursor of the requested page.
func SkipToken(c *gin.Context) string {
	return c.Query(SkipTokenParam)
}

// NextLink builds the absolute link to the page after the current one. It returns an
// empty string when cursor is empty.
func NextLink(c *gin.Context, baseURI, cursor string, take int) string {
	if cursor == "" {
		return ""
	}

	apiVersion := c.Query(APIVersionParam)
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	return fmt.Sprintf("%s%s?%s=%s&%s=%s&%s=%d",
		baseURI,
		c.Request.URL.Path,
		APIVersionParam, url.QueryEscape(apiVersion),
		SkipTokenParam, url.QueryEscape(cursor),
		MaxResultsParam, take,
	)
}
