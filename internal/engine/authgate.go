package engine

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"

	"groupbuy-service/internal/model"
	"groupbuy-service/pkg/oauth"
)

// AuthGate verifies bearer identity tokens against the external issuer and
// cross-checks the resolved identity against the identity a request claims to
// act as. Every write path fails closed: no verified identity, no mutation.
type AuthGate struct {
	verifier oauth.Verifier
	db       *gorm.DB
}

func NewAuthGate(verifier oauth.Verifier, db *gorm.DB) *AuthGate {
	return &AuthGate{verifier: verifier, db: db}
}

func (g *AuthGate) resolve(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", authError("identity token is missing", nil)
	}
	userID, err := g.verifier.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, oauth.ErrTokenMissing) {
			return "", authError("identity token is missing", err)
		}
		return "", authError("identity token rejected by issuer", err)
	}
	return userID, nil
}

// VerifyMember resolves the token and requires it to match the member id the
// request claims to submit as.
func (g *AuthGate) VerifyMember(ctx context.Context, idToken, claimedUserID string) (string, error) {
	userID, err := g.resolve(ctx, idToken)
	if err != nil {
		return "", err
	}
	if claimedUserID == "" || userID != claimedUserID {
		return "", mismatchError("token identity does not match the submitting member")
	}
	return userID, nil
}

// VerifyLeader resolves the token and requires the identity to be bound to
// the claimed leader alias. The bound profile is returned for callers that
// need the leader's display name.
func (g *AuthGate) VerifyLeader(ctx context.Context, idToken, leaderID string) (*model.LeaderProfile, error) {
	userID, err := g.resolve(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if g.db == nil {
		return nil, configError("record store not initialized")
	}
	var profile model.LeaderProfile
	err = g.db.WithContext(ctx).Where("團長代號 = ?", leaderID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, mismatchError("leader alias has no identity binding")
	}
	if err != nil {
		return nil, storeError("failed to load leader binding", err)
	}
	if profile.ExternalID != userID {
		return nil, mismatchError("token identity is not bound to this leader alias")
	}
	return &profile, nil
}

// Unbind clears the leader identity binding for the token's identity.
func (g *AuthGate) Unbind(ctx context.Context, idToken string) error {
	userID, err := g.resolve(ctx, idToken)
	if err != nil {
		return err
	}
	if g.db == nil {
		return configError("record store not initialized")
	}
	res := g.db.WithContext(ctx).Where("外部用戶ID = ?", userID).Delete(&model.LeaderProfile{})
	if res.Error != nil {
		return storeError("failed to delete leader binding", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError(http.StatusNotFound, "no leader binding exists for this identity")
	}
	return nil
}
