package password

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	phc, err := Hash(Default, "s3cret-pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(phc, "$argon2id$v=19$") {
		t.Fatalf("formato PHC inesperado: %s", phc)
	}
	if !Verify("s3cret-pass", phc) {
		t.Fatal("Verify debería aceptar la contraseña correcta")
	}
	if Verify("otra-cosa", phc) {
		t.Fatal("Verify no debería aceptar una contraseña incorrecta")
	}
}

func TestHashEmptyPassword(t *testing.T) {
	if _, err := Hash(Default, ""); err == nil {
		t.Fatal("Hash de contraseña vacía debería fallar")
	}
}

func TestHashIsSalted(t *testing.T) {
	a, _ := Hash(Default, "same-password")
	b, _ := Hash(Default, "same-password")
	if a == b {
		t.Fatal("dos hashes de la misma contraseña no deberían coincidir (salt)")
	}
}

func TestVerifyMalformed(t *testing.T) {
	cases := []string{
		"",
		"no-es-un-phc",
		"$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$ZGs",   // variante incorrecta
		"$argon2id$v=18$m=65536,t=3,p=1$c2FsdA$ZGs",  // versión incorrecta
		"$argon2id$v=19$m=65536,t=3,p=1$!!!$ZGs",     // salt no base64
		"$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$!!!",  // dk no base64
		"$argon2id$v=19$m=65536$c2FsdA$ZGs",          // params incompletos
	}
	for _, phc := range cases {
		if Verify("x", phc) {
			t.Errorf("Verify aceptó un PHC inválido: %q", phc)
		}
	}
}
