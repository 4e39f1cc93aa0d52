package access

import (
	"errors"
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/earmahsakyi/School-Management-System-sub002/core"
)

var (
	// errors
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrSectionLocked   = errors.New("no passcode is configured for this section")

	SigningMethod = jwt.SigningMethodHS256

	nowFunc = time.Now // mockable
)

// Claims is the capability carried by an access token: the sections its holder unlocked.
type Claims struct {
	jwt.StandardClaims
	Sections []string `json:"sections"`
}

func (c *Claims) Has(section string) bool {
	for _, s := range c.Sections {
		if s == section {
			return true
		}
	}
	return false
}

// Request exchanges a section's passcode for an access token.
type Request struct {
	Section  string `json:"section" validate:"required,section"`
	Passcode string `json:"passcode" validate:"required"`
}

func (r *Request) Validate(validate *validator.Validate) error {
	r.Section = core.CleanString(r.Section, true /* lower */)
	return validate.Struct(r)
}

type Response struct {
	Token     string    `json:"token,omitempty"`
	Sections  []string  `json:"sections"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	passcodes map[string][]byte // {section: bcrypt hash}
	secretKey []byte
	delta     time.Duration
	issuer    string
}

func NewService(conf *core.Config) *Service {
	passcodes := make(map[string][]byte, len(conf.Passcodes))
	for section, hash := range conf.Passcodes {
		passcodes[section] = []byte(hash)
	}
	return &Service{
		passcodes: passcodes,
		secretKey: []byte(conf.SecretKey),
		delta:     conf.AccessTokenDelta,
		issuer:    conf.AppName,
	}
}

func (svc *Service) SigningKey() []byte { return svc.secretKey }

// Grant checks the passcode and returns claims for req.Section plus the still valid sections of current.
func (svc *Service) Grant(req Request, current *Claims) (*Claims, error) {
	hash, ok := svc.passcodes[req.Section]
	if !ok {
		return nil, core.NewValidationError(ErrSectionLocked, core.FieldError{Field: "section", Error: ErrSectionLocked.Error()})
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(req.Passcode)); err != nil {
		return nil, core.NewValidationError(ErrInvalidPasscode, core.FieldError{Field: "passcode", Error: ErrInvalidPasscode.Error()})
	}

	sections := []string{req.Section}
	if current != nil {
		for _, s := range current.Sections {
			if s != req.Section {
				sections = append(sections, s)
			}
		}
	}
	sort.Strings(sections)

	now := nowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Issuer:    svc.issuer,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(svc.delta).Unix(),
		},
		Sections: sections,
	}, nil
}

// Token signs claims.
func (svc *Service) Token(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(SigningMethod, claims)
	ss, err := token.SignedString(svc.secretKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

// HashPasscode returns the bcrypt hash to configure for a section passcode.
func HashPasscode(passcode string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
