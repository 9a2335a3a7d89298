package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tedstonne/takkr-sub000/internal/challenge"
	"github.com/tedstonne/takkr-sub000/internal/dtos"
	"github.com/tedstonne/takkr-sub000/internal/models"
	"github.com/tedstonne/takkr-sub000/internal/repositories"
	"github.com/tedstonne/takkr-sub000/internal/utils"
)

const challengeLength = 32

// CeremonyService drives the passwordless challenge-response ceremonies:
// registration of a new credential and authentication with an existing
// one, targeted (username known up front) or discoverable (the
// authenticator picks the credential).
//
// Every verify/authenticate attempt consumes the pending challenge,
// success or failure, so a retry always starts from a fresh challenge.
type CeremonyService interface {
	BeginRegistration(ctx context.Context, username string) (*dtos.CredentialCreationOptions, error)
	FinishRegistration(ctx context.Context, username string, cred dtos.RegistrationCredential) (*models.User, error)

	BeginLogin(ctx context.Context, username string) (*dtos.CredentialRequestOptions, error)
	BeginDiscoverableLogin() *dtos.CredentialRequestOptions
	FinishLogin(ctx context.Context, cred dtos.AssertionCredential) (*models.User, error)
}

type ceremonyService struct {
	users      repositories.UserRepository
	challenges *challenge.Store
	rpID       string
	rpName     string
	rpOrigin   string
	rpIDHash   []byte
}

func NewCeremonyService(
	users repositories.UserRepository,
	challenges *challenge.Store,
	rpID, rpName, rpOrigin string,
) CeremonyService {
	hash := sha256.Sum256([]byte(rpID))
	return &ceremonyService{
		users:      users,
		challenges: challenges,
		rpID:       rpID,
		rpName:     rpName,
		rpOrigin:   rpOrigin,
		rpIDHash:   hash[:],
	}
}

// ---------------------------------------------------------------------
// Registration
// ---------------------------------------------------------------------

func (s *ceremonyService) BeginRegistration(ctx context.Context, username string) (*dtos.CredentialCreationOptions, error) {
	taken, err := s.users.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("checking username: %w", err)
	}
	if taken {
		return nil, utils.ErrUsernameTaken
	}

	ch := newChallenge()
	s.challenges.Set(username, ch)

	return &dtos.CredentialCreationOptions{
		Challenge: ch,
		RP:        dtos.RelyingParty{ID: s.rpID, Name: s.rpName},
		User: dtos.CredentialUser{
			ID:          base64.RawURLEncoding.EncodeToString([]byte(username)),
			Name:        username,
			DisplayName: username,
		},
		PubKeyCredParams: []dtos.CredentialParam{{Type: "public-key", Alg: coseAlgES256}},
	}, nil
}

func (s *ceremonyService) FinishRegistration(ctx context.Context, username string, cred dtos.RegistrationCredential) (*models.User, error) {
	expected, ok := s.challenges.Get(username)
	if !ok {
		return nil, utils.ErrChallengeNotFound
	}
	// Consumed on every attempt: a second try with the same stale
	// challenge must also fail.
	defer s.challenges.Delete(username)

	cd, err := parseClientData(cred.ClientDataJSON, ceremonyTypeCreate, s.rpOrigin)
	if err != nil {
		utils.Logger.WithError(err).Warnf("[ceremony] registration client data rejected for %q", username)
		return nil, utils.ErrVerificationFailed
	}
	if cd.Challenge != expected {
		utils.Logger.Warnf("[ceremony] registration challenge mismatch for %q", username)
		return nil, utils.ErrVerificationFailed
	}

	ad, err := parseAttestationObject(cred.AttestationObject, s.rpIDHash)
	if err != nil {
		utils.Logger.WithError(err).Warnf("[ceremony] attestation rejected for %q", username)
		return nil, utils.ErrVerificationFailed
	}

	credID, err := decodeFlexB64(cred.ID)
	if err != nil || len(credID) == 0 || !bytes.Equal(credID, ad.credentialID) {
		utils.Logger.Warnf("[ceremony] credential id mismatch for %q", username)
		return nil, utils.ErrVerificationFailed
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		CredentialID: ad.credentialID,
		PublicKey:    ad.publicKeyDER,
		SignCount:    ad.signCount,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	utils.Logger.Infof("[ceremony] registered new credential for %q", username)
	return user, nil
}

// ---------------------------------------------------------------------
// Authentication
// ---------------------------------------------------------------------

func (s *ceremonyService) BeginLogin(ctx context.Context, username string) (*dtos.CredentialRequestOptions, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}

	credKey := base64.RawURLEncoding.EncodeToString(user.CredentialID)
	ch := newChallenge()
	s.challenges.Set(credKey, ch)

	return &dtos.CredentialRequestOptions{
		Challenge:        ch,
		RPID:             s.rpID,
		AllowCredentials: []string{credKey},
	}, nil
}

// BeginDiscoverableLogin issues a challenge with no prior identity
// lookup; the challenge value doubles as its own store key so the
// authenticator can answer with any credential it holds for the origin.
func (s *ceremonyService) BeginDiscoverableLogin() *dtos.CredentialRequestOptions {
	ch := newChallenge()
	s.challenges.Set(ch, ch)

	return &dtos.CredentialRequestOptions{
		Challenge: ch,
		RPID:      s.rpID,
	}
}

func (s *ceremonyService) FinishLogin(ctx context.Context, cred dtos.AssertionCredential) (*models.User, error) {
	credID, err := decodeFlexB64(cred.ID)
	if err != nil || len(credID) == 0 {
		return nil, utils.ErrVerificationFailed
	}

	user, err := s.users.GetByCredentialID(ctx, credID)
	if err != nil {
		return nil, fmt.Errorf("identifying credential: %w", err)
	}
	if user == nil {
		return nil, utils.ErrUserNotFound
	}

	// Resolve and consume the pending challenge before any verification
	// check, so a rejected attempt burns it just like a successful one.
	// Targeted logins key the challenge by credential id; discoverable
	// logins key it by the challenge value the client data embeds, read
	// here leniently since the client data is not yet validated.
	embedded := embeddedChallenge(cred.ClientDataJSON)
	credKey := base64.RawURLEncoding.EncodeToString(user.CredentialID)
	storeKey := credKey
	expected, ok := s.challenges.Get(credKey)
	if !ok || expected != embedded {
		if value, found := s.challenges.Get(embedded); found {
			storeKey, expected, ok = embedded, value, true
		}
	}
	if !ok {
		return nil, utils.ErrChallengeNotFound
	}
	defer s.challenges.Delete(storeKey)

	cd, err := parseClientData(cred.ClientDataJSON, ceremonyTypeGet, s.rpOrigin)
	if err != nil {
		utils.Logger.WithError(err).Warn("[ceremony] assertion client data rejected")
		return nil, utils.ErrVerificationFailed
	}
	if cd.Challenge != expected {
		utils.Logger.Warnf("[ceremony] assertion challenge mismatch for %q", user.Username)
		return nil, utils.ErrVerificationFailed
	}

	newCount, err := s.authenticate(user, cred)
	if err != nil {
		utils.Logger.WithError(err).Warnf("[ceremony] assertion rejected for %q", user.Username)
		return nil, utils.ErrVerificationFailed
	}

	if err := s.users.Touch(ctx, user.Username, newCount); err != nil {
		return nil, fmt.Errorf("persisting sign count: %w", err)
	}
	user.SignCount = newCount

	utils.Logger.Infof("[ceremony] authenticated %q", user.Username)
	return user, nil
}

// authenticate verifies the signed assertion against the user's stored
// public key and prior signature counter, returning the new counter.
func (s *ceremonyService) authenticate(user *models.User, cred dtos.AssertionCredential) (uint32, error) {
	authData, err := decodeFlexB64(cred.AuthenticatorData)
	if err != nil {
		return 0, fmt.Errorf("decode authenticator data: %w", err)
	}
	ad, err := parseAuthenticatorData(authData)
	if err != nil {
		return 0, err
	}
	if !bytes.Equal(ad.rpIDHash, s.rpIDHash) {
		return 0, errors.New("rpIdHash mismatch")
	}
	if !ad.userPresent() {
		return 0, errors.New("user-presence flag not set")
	}

	clientJSON, err := decodeFlexB64(cred.ClientDataJSON)
	if err != nil {
		return 0, fmt.Errorf("decode client data: %w", err)
	}
	sig, err := decodeFlexB64(cred.Signature)
	if err != nil {
		return 0, fmt.Errorf("decode signature: %w", err)
	}

	if err := verifyAssertionSignature(authData, clientJSON, sig, user.PublicKey); err != nil {
		return 0, err
	}

	// Counter ratchet: a replayed or cloned-authenticator assertion
	// presents a counter at or below the stored one.
	if user.SignCount > 0 && ad.signCount > 0 && ad.signCount <= user.SignCount {
		return 0, errors.New("signature counter regression")
	}
	return ad.signCount, nil
}

func newChallenge() string {
	return base64.RawURLEncoding.EncodeToString(utils.RandomBytes(challengeLength))
}
