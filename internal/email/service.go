package email

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Service sends transactional mail via Amazon SES. When no sender address is
// configured the service runs disabled and skips every send, so local
// development works without AWS credentials.
type Service struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
}

func NewService(awsRegion, fromEmail, fromName string) (*Service, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &Service{enabled: false}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &Service{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the email service is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// SendOTP mails a verification code. Best effort: callers log failures and
// never fail the surrounding request on a delivery error.
func (s *Service) SendOTP(ctx context.Context, toEmail, code string) error {
	subject := "Verify Your Riddle Game Account"
	body := fmt.Sprintf("Your OTP for Riddle Game is: %s\n\nThe code expires in 5 minutes.", code)
	return s.send(ctx, toEmail, subject, body)
}

func (s *Service) send(ctx context.Context, toEmail, subject, body string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): %q to %s", subject, toEmail)
		return nil
	}

	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Text: &types.Content{
						Data: aws.String(body),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	return nil
}
