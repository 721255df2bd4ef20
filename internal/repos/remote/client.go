package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v62/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/temirov/reposync/internal/repos/shared"
)

const (
	pageSizeConstant                    = 100
	maximumPageCountConstant            = 1000
	userAgentConstant                   = "reposync"
	perPageQueryParameterConstant       = "per_page"
	pageQueryParameterConstant          = "page"
	rateLimitSingleSleepLimitConstant   = time.Hour
	rateLimitWaiterErrorTemplate        = "failed to create rate limit waiter: %w"
	endpointMissingMessageConstant      = "team repositories endpoint URL not provided"
	endpointInvalidErrorTemplate        = "invalid team repositories endpoint %q: %w"
	pageRequestErrorTemplate            = "page %d request could not be built: %w"
	pageFetchErrorTemplate              = "page %d could not be fetched: %w"
	pageErrorMessageTemplate            = "team repositories page %d failed: %v"
	pageFetchFailedLogMessage           = "Stopping team repository pagination after page failure"
	pageFetchedLogMessage               = "Fetched team repositories page"
	pageCapReachedLogMessage            = "Stopping team repository pagination at the page cap"
	unknownPaginationPolicyErrorMessage = "unknown pagination policy"
	logFieldEndpointConstant            = "endpoint"
	logFieldPageConstant                = "page"
	logFieldPageSizeConstant            = "repositories"
	logFieldActiveCountConstant         = "active"
	logFieldArchivedCountConstant       = "archived"
)

// PaginationPolicy selects the rule that ends pagination.
type PaginationPolicy string

const (
	// PaginationPolicyFilteredPage stops at the first page with no active prefixed repositories.
	// A page filled only with foreign or archived repositories ends pagination early.
	PaginationPolicyFilteredPage PaginationPolicy = "filtered"
	// PaginationPolicyProviderPage stops at the first page the provider returns empty.
	PaginationPolicyProviderPage PaginationPolicy = "provider"
)

var (
	// ErrEndpointMissing indicates the request carried no endpoint URL.
	ErrEndpointMissing = errors.New(endpointMissingMessageConstant)
	// ErrUnknownPaginationPolicy indicates an unsupported pagination policy value.
	ErrUnknownPaginationPolicy = errors.New(unknownPaginationPolicyErrorMessage)
)

// ParsePaginationPolicy converts a configuration value into a PaginationPolicy. Empty values select the filtered policy.
func ParsePaginationPolicy(value string) (PaginationPolicy, error) {
	switch PaginationPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PaginationPolicyFilteredPage:
		return PaginationPolicyFilteredPage, nil
	case PaginationPolicyProviderPage:
		return PaginationPolicyProviderPage, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownPaginationPolicy, value)
	}
}

// TeamRepositoriesRequest describes a team repository listing.
type TeamRepositoriesRequest struct {
	EndpointURL      string
	Prefix           shared.TeamPrefix
	PaginationPolicy PaginationPolicy
}

// Inventory holds the prefixed repositories listed by the endpoint in provider order.
type Inventory struct {
	Active       []shared.RemoteRepository
	Archived     []shared.RemoteRepository
	PagesFetched int
	PageError    error
}

// InventoryPageError describes the page failure that ended pagination.
type InventoryPageError struct {
	Page  int
	Cause error
}

// Error describes the page failure.
func (pageError InventoryPageError) Error() string {
	return fmt.Sprintf(pageErrorMessageTemplate, pageError.Page, pageError.Cause)
}

// Unwrap exposes the underlying failure.
func (pageError InventoryPageError) Unwrap() error {
	return pageError.Cause
}

// InventoryLister lists the repositories of a team.
type InventoryLister interface {
	ListTeamRepositories(executionContext context.Context, request TeamRepositoriesRequest) (Inventory, error)
}

// Client fetches team repository listings.
type Client struct {
	restClient   *github.Client
	logger       *zap.Logger
	maximumPages int
}

// NewClient builds a Client authenticating with the bearer token and waiting out secondary rate limits.
func NewClient(token string, logger *zap.Logger) (*Client, error) {
	rateLimitWaiter, waiterError := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(rateLimitSingleSleepLimitConstant, nil))
	if waiterError != nil {
		return nil, fmt.Errorf(rateLimitWaiterErrorTemplate, waiterError)
	}
	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: tokenSource,
		},
	}
	return NewClientWithHTTPClient(httpClient, logger), nil
}

// NewClientWithHTTPClient builds a Client over an existing HTTP client.
func NewClientWithHTTPClient(httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	restClient := github.NewClient(httpClient)
	restClient.UserAgent = userAgentConstant
	return &Client{restClient: restClient, logger: logger, maximumPages: maximumPageCountConstant}
}

// ListTeamRepositories walks the endpoint pages sequentially. Page failures end pagination and are
// recorded in Inventory.PageError; repositories gathered from earlier pages are kept.
func (client *Client) ListTeamRepositories(executionContext context.Context, request TeamRepositoriesRequest) (Inventory, error) {
	endpointValue := strings.TrimSpace(request.EndpointURL)
	if len(endpointValue) == 0 {
		return Inventory{}, ErrEndpointMissing
	}
	endpointURL, parseError := url.Parse(endpointValue)
	if parseError != nil {
		return Inventory{}, fmt.Errorf(endpointInvalidErrorTemplate, endpointValue, parseError)
	}
	policy := request.PaginationPolicy
	if len(policy) == 0 {
		policy = PaginationPolicyFilteredPage
	}

	inventory := Inventory{}
	for pageNumber := 1; pageNumber <= client.maximumPages; pageNumber++ {
		pageRepositories, pageError := client.fetchPage(executionContext, endpointURL, pageNumber)
		if pageError != nil {
			inventory.PageError = InventoryPageError{Page: pageNumber, Cause: pageError}
			client.logger.Warn(pageFetchFailedLogMessage,
				zap.String(logFieldEndpointConstant, endpointValue),
				zap.Int(logFieldPageConstant, pageNumber),
				zap.Error(pageError),
			)
			return inventory, nil
		}
		inventory.PagesFetched++

		activeCount := 0
		archivedCount := 0
		for _, repository := range pageRepositories {
			if !request.Prefix.Matches(repository.Name) {
				continue
			}
			if repository.Archived {
				inventory.Archived = append(inventory.Archived, repository)
				archivedCount++
				continue
			}
			inventory.Active = append(inventory.Active, repository)
			activeCount++
		}

		client.logger.Debug(pageFetchedLogMessage,
			zap.Int(logFieldPageConstant, pageNumber),
			zap.Int(logFieldPageSizeConstant, len(pageRepositories)),
			zap.Int(logFieldActiveCountConstant, activeCount),
			zap.Int(logFieldArchivedCountConstant, archivedCount),
		)

		if len(pageRepositories) == 0 {
			return inventory, nil
		}
		if policy == PaginationPolicyFilteredPage && activeCount == 0 {
			return inventory, nil
		}
	}

	client.logger.Warn(pageCapReachedLogMessage, zap.String(logFieldEndpointConstant, endpointValue), zap.Int(logFieldPageConstant, client.maximumPages))
	return inventory, nil
}

func (client *Client) fetchPage(executionContext context.Context, endpointURL *url.URL, pageNumber int) ([]shared.RemoteRepository, error) {
	pageURL := *endpointURL
	queryValues := pageURL.Query()
	queryValues.Set(perPageQueryParameterConstant, strconv.Itoa(pageSizeConstant))
	queryValues.Set(pageQueryParameterConstant, strconv.Itoa(pageNumber))
	pageURL.RawQuery = queryValues.Encode()

	request, requestError := client.restClient.NewRequest(http.MethodGet, pageURL.String(), nil)
	if requestError != nil {
		return nil, fmt.Errorf(pageRequestErrorTemplate, pageNumber, requestError)
	}

	var payload []*github.Repository
	if _, doError := client.restClient.Do(executionContext, request, &payload); doError != nil {
		return nil, fmt.Errorf(pageFetchErrorTemplate, pageNumber, doError)
	}

	repositories := make([]shared.RemoteRepository, 0, len(payload))
	for _, repository := range payload {
		if repository == nil {
			continue
		}
		repositories = append(repositories, shared.RemoteRepository{
			Name:     repository.GetName(),
			Archived: repository.GetArchived(),
			CloneURL: resolveCloneURL(repository),
		})
	}
	return repositories, nil
}

func resolveCloneURL(repository *github.Repository) string {
	for _, candidate := range []string{repository.GetCloneURL(), repository.GetSSHURL(), repository.GetGitURL()} {
		if len(strings.TrimSpace(candidate)) > 0 {
			return candidate
		}
	}
	return ""
}
