package google

import (
	"context"
	"fmt"

	"pixelfeed/internal/services/auth"

	"google.golang.org/api/idtoken"
)

const providerName = "google"

// Verifier validates Google ID tokens against the configured OAuth client id
// and maps them onto the auth service's external-identity shape.
type Verifier struct {
	clientID string
}

func NewVerifier(clientID string) *Verifier {
	return &Verifier{clientID: clientID}
}

func (v *Verifier) Verify(ctx context.Context, credential string) (*auth.ExternalIdentity, error) {
	const op = "clients.google.Verify"

	payload, err := idtoken.Validate(ctx, credential, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%s: no email in google account", op)
	}
	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)

	return &auth.ExternalIdentity{
		Provider: providerName,
		Email:    email,
		Name:     name,
		Picture:  picture,
	}, nil
}
