package gmailclient

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Client wraps the Gmail API client
type Client struct {
	service      *gmail.Service
	from         string
	lastSendTime time.Time
	sendMutex    sync.Mutex
}

// Credentials holds the OAuth material needed to send mail on behalf of the
// coordinating account. The refresh token must carry the gmail.send scope.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	From         string
}

// NewClient creates a Gmail client from a stored refresh token
func NewClient(ctx context.Context, creds Credentials) (*Client, error) {
	oauthConfig := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}

	token := &oauth2.Token{RefreshToken: creds.RefreshToken}
	httpClient := oauthConfig.Client(ctx, token)

	service, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Client{
		service: service,
		from:    creds.From,
	}, nil
}
