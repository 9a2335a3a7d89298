package dtos

// ---------------------------------------------------------------------
// Ceremony requests
// ---------------------------------------------------------------------

type RegisterChallengeRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
}

type LoginChallengeRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32,alphanum"`
}

// RegistrationCredential is the client's answer to a registration
// challenge. All binary fields are URL-safe base64.
type RegistrationCredential struct {
	ID                string `json:"id" validate:"required,max=1024"`
	AttestationObject string `json:"attestation_object" validate:"required,max=12288"`
	ClientDataJSON    string `json:"client_data_json" validate:"required,min=16,max=2048"`
}

type RegisterVerifyRequest struct {
	Username   string                 `json:"username" validate:"required,min=3,max=32,alphanum"`
	Credential RegistrationCredential `json:"credential" validate:"required"`
}

// AssertionCredential is the client's answer to an authentication
// challenge (targeted or discoverable).
type AssertionCredential struct {
	ID                string `json:"id" validate:"required,max=1024"`
	AuthenticatorData string `json:"authenticator_data" validate:"required,max=8192"`
	ClientDataJSON    string `json:"client_data_json" validate:"required,min=16,max=2048"`
	Signature         string `json:"signature" validate:"required,max=2048"`
}

type LoginVerifyRequest struct {
	Credential AssertionCredential `json:"credential" validate:"required"`
}

// ---------------------------------------------------------------------
// Ceremony responses (public ceremony parameters)
// ---------------------------------------------------------------------

type RelyingParty struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type CredentialUser struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

type CredentialParam struct {
	Type string `json:"type"`
	Alg  int    `json:"alg"`
}

// CredentialCreationOptions are the public parameters of a registration
// ceremony.
type CredentialCreationOptions struct {
	Challenge        string            `json:"challenge"`
	RP               RelyingParty      `json:"rp"`
	User             CredentialUser    `json:"user"`
	PubKeyCredParams []CredentialParam `json:"pub_key_cred_params"`
}

// CredentialRequestOptions are the public parameters of an
// authentication ceremony. AllowCredentials is empty for a
// discoverable login.
type CredentialRequestOptions struct {
	Challenge        string   `json:"challenge"`
	RPID             string   `json:"rp_id"`
	AllowCredentials []string `json:"allow_credentials,omitempty"`
}

type MeResponse struct {
	Username string `json:"username"`
}
