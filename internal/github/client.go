// Package github adapts the GitHub REST API to the tracker's event
// source and membership oracle contracts.
package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v71/github"
	"go.uber.org/zap"

	"prtrack/internal/domain"
	"prtrack/internal/membership"
)

const perPage = 100

// Client fetches pull requests and their event streams for one upstream
// repository and answers home-org membership queries.
type Client struct {
	gh      *gh.Client
	owner   string
	repo    string
	homeOrg string
	log     *zap.SugaredLogger
}

func NewClient(token, owner, repo, homeOrg string, log *zap.SugaredLogger) (*Client, error) {
	if token == "" {
		return nil, domain.ErrNoToken
	}
	return &Client{
		gh:      gh.NewClient(nil).WithAuthToken(token),
		owner:   owner,
		repo:    repo,
		homeOrg: homeOrg,
		log:     log,
	}, nil
}

// ListPullRequests pages through every PR of the repository, open and
// closed.
func (c *Client) ListPullRequests(ctx context.Context) ([]domain.PullRequest, error) {
	opts := &gh.PullRequestListOptions{
		State:       "all",
		ListOptions: gh.ListOptions{PerPage: perPage},
	}

	var out []domain.PullRequest
	page := 1
	for {
		c.log.Infow("fetching PR page", "page", page)
		prs, resp, err := c.gh.PullRequests.List(ctx, c.owner, c.repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list pull requests page %d: %w", page, err)
		}
		for _, pr := range prs {
			out = append(out, mapPullRequest(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
		page = resp.NextPage
	}
	c.log.Infow("fetched PRs", "count", len(out))
	return out, nil
}

// FetchEventStreams collects the timeline (primary) plus the review,
// comment, and commit streams for one PR.
func (c *Client) FetchEventStreams(ctx context.Context, number int) (domain.EventStreams, error) {
	var streams domain.EventStreams

	timeline, err := c.fetchTimeline(ctx, number)
	if err != nil {
		return streams, err
	}
	streams.Timeline = timeline

	if streams.Reviews, err = c.fetchReviews(ctx, number); err != nil {
		return streams, err
	}
	if streams.ReviewComments, err = c.fetchReviewComments(ctx, number); err != nil {
		return streams, err
	}
	if streams.IssueComments, err = c.fetchIssueComments(ctx, number); err != nil {
		return streams, err
	}
	if streams.Commits, err = c.fetchCommits(ctx, number); err != nil {
		return streams, err
	}
	return streams, nil
}

func (c *Client) fetchTimeline(ctx context.Context, number int) ([]domain.Event, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var out []domain.Event
	for {
		evs, resp, err := c.gh.Issues.ListIssueTimeline(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("timeline for PR #%d: %w", number, err)
		}
		for _, ev := range evs {
			out = append(out, mapTimelineEvent(ev))
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) fetchReviews(ctx context.Context, number int) ([]domain.Event, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var out []domain.Event
	for {
		reviews, resp, err := c.gh.PullRequests.ListReviews(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("reviews for PR #%d: %w", number, err)
		}
		for _, r := range reviews {
			out = append(out, mapReview(r))
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) fetchReviewComments(ctx context.Context, number int) ([]domain.Event, error) {
	opts := &gh.PullRequestListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	var out []domain.Event
	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("review comments for PR #%d: %w", number, err)
		}
		for _, cm := range comments {
			out = append(out, domain.Event{
				Kind:      domain.KindReviewComment,
				Timestamp: tsPtr(cm.CreatedAt),
				Actor:     cm.GetUser().GetLogin(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) fetchIssueComments(ctx context.Context, number int) ([]domain.Event, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: perPage}}
	var out []domain.Event
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("issue comments for PR #%d: %w", number, err)
		}
		for _, cm := range comments {
			out = append(out, domain.Event{
				Kind:      domain.KindCommented,
				Timestamp: tsPtr(cm.CreatedAt),
				Actor:     cm.GetUser().GetLogin(),
			})
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

func (c *Client) fetchCommits(ctx context.Context, number int) ([]domain.Event, error) {
	opts := &gh.ListOptions{PerPage: perPage}
	var out []domain.Event
	for {
		commits, resp, err := c.gh.PullRequests.ListCommits(ctx, c.owner, c.repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("commits for PR #%d: %w", number, err)
		}
		for _, rc := range commits {
			out = append(out, mapCommit(rc))
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// CheckMembership implements the membership oracle against the home
// organization. Transport and authorization failures are indeterminate,
// not fatal: they may reflect a transient permission gap.
func (c *Client) CheckMembership(ctx context.Context, login string) (membership.Result, error) {
	isMember, _, err := c.gh.Organizations.IsMember(ctx, c.homeOrg, login)
	if err != nil {
		return membership.Indeterminate, fmt.Errorf("membership of %q in %s: %w", login, c.homeOrg, err)
	}
	if isMember {
		return membership.Member, nil
	}
	return membership.NonMember, nil
}
