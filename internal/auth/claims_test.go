package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

func TestGenerateAndParseAccessToken(t *testing.T) {
	token, err := GenerateAccessToken("console-client", RoleOperator, testSecret, 15)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateAccessToken() returned empty token")
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "console-client" {
		t.Errorf("Subject = %q, want %q", claims.Subject, "console-client")
	}
	if claims.Role != RoleOperator {
		t.Errorf("Role = %q, want %q", claims.Role, RoleOperator)
	}
	if claims.ID == "" {
		t.Error("JTI (ID) should not be empty")
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != 15*time.Minute {
		t.Errorf("TTL = %v, want 15m", ttl)
	}
}

func TestGenerateAccessTokenDefaultsAndErrors(t *testing.T) {
	token, err := GenerateAccessToken("c", RoleViewer, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatal(err)
	}
	if ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time); ttl != defaultTTLMinutes*time.Minute {
		t.Errorf("default TTL = %v", ttl)
	}

	if _, err := GenerateAccessToken("c", Role("root"), testSecret, 15); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("unknown role error = %v, want ErrUnknownRole", err)
	}
}

func TestParseTokenRejects(t *testing.T) {
	valid, err := GenerateAccessToken("c", RoleViewer, testSecret, 15)
	if err != nil {
		t.Fatal(err)
	}

	expired := signClaims(t, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "c",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		Role: RoleViewer,
	}, jwt.SigningMethodHS256)

	noSubject := signClaims(t, CustomClaims{Role: RoleViewer}, jwt.SigningMethodHS256)
	badRole := signClaims(t, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "c"},
		Role:             "root",
	}, jwt.SigningMethodHS256)
	wrongAlg := signClaims(t, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "c"},
		Role:             RoleViewer,
	}, jwt.SigningMethodHS512)

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"garbage", "not-a-valid-jwt", testSecret},
		{"wrong secret", valid, "another-secret-another-secret-xx"},
		{"expired", expired, testSecret},
		{"missing subject", noSubject, testSecret},
		{"unknown role", badRole, testSecret},
		{"wrong algorithm", wrongAlg, testSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, tt.secret)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestCheckAPIKey(t *testing.T) {
	tests := []struct {
		presented, configured string
		ok                    bool
	}{
		{"secret-key", "secret-key", true},
		{"secret-kex", "secret-key", false},
		{"", "secret-key", false},
		{"", "", false},
	}
	for _, tt := range tests {
		err := CheckAPIKey(tt.presented, tt.configured)
		if (err == nil) != tt.ok {
			t.Errorf("CheckAPIKey(%q, %q) = %v, want ok=%v", tt.presented, tt.configured, err, tt.ok)
		}
		if err != nil && !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("error = %v, want ErrInvalidCredentials", err)
		}
	}
}

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role Role
		perm Permission
		want bool
	}{
		{RoleViewer, PermDeviceRead, true},
		{RoleViewer, PermSimulationRead, true},
		{RoleViewer, PermDeviceOperate, false},
		{RoleViewer, PermSimulationManage, false},
		{RoleOperator, PermDeviceOperate, true},
		{RoleOperator, PermDeviceConfigure, true},
		{RoleOperator, PermSimulationManage, true},
		{Role("root"), PermDeviceRead, false},
	}
	for _, tt := range tests {
		if got := HasPermission(tt.role, tt.perm); got != tt.want {
			t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}

	perms := PermissionsForRole(RoleViewer)
	perms[0] = PermSimulationManage
	if HasPermission(RoleViewer, PermSimulationManage) {
		t.Error("PermissionsForRole must return a copy")
	}
	if PermissionsForRole("root") != nil {
		t.Error("unknown role should have no permissions")
	}
}

func signClaims(t *testing.T, claims CustomClaims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}
