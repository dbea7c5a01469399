package translate

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	awstranslate "github.com/aws/aws-sdk-go/service/translate"
	"github.com/aws/aws-sdk-go/service/translate/translateiface"
)

// AWS translates through Amazon Translate. Credentials come from the
// default provider chain.
type AWS struct {
	client translateiface.TranslateAPI
}

// NewAWS creates a session for region and returns the backend.
func NewAWS(region string) (*AWS, error) {
	sess, err := session.NewSession()
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return NewAWSWithClient(awstranslate.New(sess, aws.NewConfig().WithRegion(region))), nil
}

// NewAWSWithClient wraps an existing client.
func NewAWSWithClient(client translateiface.TranslateAPI) *AWS {
	return &AWS{client: client}
}

func (a *AWS) Name() string { return "aws" }

func (a *AWS) Translate(ctx context.Context, text, from, to string) (string, error) {
	out, err := a.client.TextWithContext(ctx, &awstranslate.TextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(from),
		TargetLanguageCode: aws.String(to),
	})
	if err != nil {
		return "", fmt.Errorf("aws translate: %w", err)
	}
	return aws.StringValue(out.TranslatedText), nil
}
