// Package token emite y valida los access tokens HS256 que viajan entre
// el gateway y los servicios. Es puro: no hace I/O y el reloj es
// inyectable para tests.
package token

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformed: el string no es un JWT parseable.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid: firma que no corresponde a la clave.
	ErrSignatureInvalid = errors.New("token signature invalid")
	// ErrExpired: token bien firmado pero vencido.
	ErrExpired = errors.New("token expired")
	// ErrIssuerMismatch: el claim iss no es el esperado.
	ErrIssuerMismatch = errors.New("token issuer mismatch")

	// ErrSecretTooShort: la clave HS256 debe tener al menos 32 bytes.
	ErrSecretTooShort = errors.New("secret too short: need at least 32 bytes")
)

// MinSecretLen es el largo mínimo de la clave simétrica en bytes.
const MinSecretLen = 32

// Claims son los claims que emitimos y devolvemos al validar.
type Claims struct {
	Issuer    string
	Subject   string // id del usuario
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Issuer firma access tokens con una clave simétrica inyectada.
type Issuer struct {
	Secret []byte
	Iss    string
	TTL    time.Duration
	Now    func() time.Time // nil = time.Now
}

// NewIssuer valida la clave y arma un Issuer con TTL dado.
func NewIssuer(secret []byte, iss string, ttl time.Duration) (*Issuer, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Issuer{Secret: secret, Iss: iss, TTL: ttl}, nil
}

func (i *Issuer) now() time.Time {
	if i.Now != nil {
		return i.Now()
	}
	return time.Now()
}

// Issue firma un token para el usuario dado y devuelve el string firmado
// junto con el instante de expiración.
func (i *Issuer) Issue(sub, username string) (string, time.Time, error) {
	if len(i.Secret) < MinSecretLen {
		return "", time.Time{}, ErrSecretTooShort
	}
	now := i.now().UTC()
	exp := now.Add(i.TTL)

	claims := jwtv5.MapClaims{
		"iss":      i.Iss,
		"sub":      sub,
		"username": username,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign: %w", err)
	}
	return signed, exp, nil
}

// Validator valida tokens emitidos por un Issuer con la misma clave.
type Validator struct {
	Secret []byte
	Iss    string           // si != "", se exige match exacto
	Now    func() time.Time // nil = time.Now
}

// NewValidator valida la clave y arma un Validator.
func NewValidator(secret []byte, iss string) (*Validator, error) {
	if len(secret) < MinSecretLen {
		return nil, ErrSecretTooShort
	}
	return &Validator{Secret: secret, Iss: iss}, nil
}

// Validate parsea y valida raw. Devuelve los claims si el token es
// auténtico y vigente; si no, uno de los sentinels del paquete.
func (v *Validator) Validate(raw string) (Claims, error) {
	keyfunc := func(t *jwtv5.Token) (any, error) {
		return v.Secret, nil
	}

	opts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{"HS256"}),
	}
	if v.Now != nil {
		opts = append(opts, jwtv5.WithTimeFunc(v.Now))
	}

	tok, err := jwtv5.Parse(raw, keyfunc, opts...)
	if err != nil {
		switch {
		case errors.Is(err, jwtv5.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
			return Claims{}, ErrSignatureInvalid
		case errors.Is(err, jwtv5.ErrTokenMalformed):
			return Claims{}, ErrMalformed
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if !tok.Valid {
		return Claims{}, ErrSignatureInvalid
	}

	mc, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return Claims{}, ErrMalformed
	}

	c := Claims{}
	c.Issuer, _ = mc["iss"].(string)
	c.Subject, _ = mc["sub"].(string)
	c.Username, _ = mc["username"].(string)
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	if exp, ok := mc["exp"].(float64); ok {
		c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}

	if v.Iss != "" && c.Issuer != v.Iss {
		return Claims{}, ErrIssuerMismatch
	}
	return c, nil
}
