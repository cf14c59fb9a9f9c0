package models

// Credential is the stored identity record for an account. Secret holds a
// bcrypt hash of the password, never the plaintext. The json tag on Secret
// guarantees the hash can never leak into an HTTP response, regardless of
// which struct a handler encodes.
type Credential struct {
	ID       string `bson:"_id,omitempty" mapstructure:"id" db:"id" json:"id,omitempty"`
	Username string `bson:"username" mapstructure:"username" db:"username" json:"username"`
	Secret   string `bson:"secret" mapstructure:"secret" db:"secret" json:"-"`
}

// Profile is the game-facing account state joined to a Credential by
// username only. There is no referential integrity at the storage layer.
type Profile struct {
	ID             string  `bson:"_id,omitempty" mapstructure:"id" db:"id" json:"id,omitempty"`
	Username       string  `bson:"username" mapstructure:"username" db:"username" json:"username"`
	Balance        float64 `bson:"balance" mapstructure:"balance" db:"balance" json:"balance"`
	Wins           int64   `bson:"wins" mapstructure:"wins" db:"wins" json:"wins"`
	Losses         int64   `bson:"losses" mapstructure:"losses" db:"losses" json:"losses"`
	TotalDeposited float64 `bson:"total_deposited" mapstructure:"total_deposited" db:"total_deposited" json:"totalDeposited"`
}

// NewCredential creates a new Credential instance with the given username and
// hashed secret. No validation is performed here.
func NewCredential(username string, secret string) *Credential {
	return &Credential{
		Username: username,
		Secret:   secret,
	}
}

// NewProfile creates a Profile for a freshly registered account. All numeric
// fields start at zero.
func NewProfile(username string) *Profile {
	return &Profile{
		Username:       username,
		Balance:        0,
		Wins:           0,
		Losses:         0,
		TotalDeposited: 0,
	}
}
