package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidation(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		shouldErr bool
	}{
		{
			name:      "valid email",
			email:     "user@example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with subdomain",
			email:     "user@mail.example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with plus",
			email:     "user+tag@example.com",
			shouldErr: false,
		},
		{
			name:      "valid email with dots",
			email:     "first.last@example.com",
			shouldErr: false,
		},
		{
			name:      "invalid - no @",
			email:     "userexample.com",
			shouldErr: true,
		},
		{
			name:      "invalid - no domain",
			email:     "user@",
			shouldErr: true,
		},
		{
			name:      "invalid - no local part",
			email:     "@example.com",
			shouldErr: true,
		},
		{
			name:      "invalid - no TLD",
			email:     "user@example",
			shouldErr: true,
		},
		{
			name:      "invalid - spaces",
			email:     "user @example.com",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Email.Validate(tt.email)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "no whitespace",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			input:     " validstring",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			input:     "validstring ",
			shouldErr: true,
		},
		{
			name:      "both leading and trailing",
			input:     " validstring ",
			shouldErr: true,
		},
		{
			name:      "internal spaces allowed",
			input:     "valid string",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid string",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "only spaces",
			input:     "   ",
			shouldErr: true,
		},
		{
			name:      "only tabs",
			input:     "\t\t",
			shouldErr: true,
		},
		{
			name:      "only newlines",
			input:     "\n\n",
			shouldErr: true,
		},
		{
			name:      "mixed whitespace",
			input:     " \t\n ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error returns nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "wraps validation error",
			err:      assert.AnError,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapValidationError(tt.err)
			if tt.expected {
				assert.Error(t, result)
				assert.Contains(t, result.Error(), "invalid input")
			} else {
				assert.NoError(t, result)
			}
		})
	}
}

func TestEntityName(t *testing.T) {
	for _, name := range []string{"a", "my-secret", "Key01", strings.Repeat("a", 127)} {
		assert.NoError(t, EntityName.Validate(name), name)
	}
	for _, name := range []string{"my_secret", "has space", "dot.name", strings.Repeat("a", 128)} {
		assert.Error(t, EntityName.Validate(name), name)
	}
}

func TestBase64URL(t *testing.T) {
	t.Run("Success_Unpadded", func(t *testing.T) {
		assert.NoError(t, Base64URL.Validate("aGVsbG8"))
	})

	t.Run("Success_Padded", func(t *testing.T) {
		assert.NoError(t, Base64URL.Validate("aGVsbG8="))
	})

	t.Run("Success_EmptyLeftToRequired", func(t *testing.T) {
		assert.NoError(t, Base64URL.Validate(""))
	})

	t.Run("Error_StandardAlphabet", func(t *testing.T) {
		assert.Error(t, Base64URL.Validate("a+b/"))
	})

	t.Run("Error_NotString", func(t *testing.T) {
		assert.Error(t, Base64URL.Validate(42))
	})
}

func TestBase64(t *testing.T) {
	assert.NoError(t, Base64.Validate("aGVsbG8="))
	assert.Error(t, Base64.Validate("not base64!"))
}

func TestDecodeBase64URL(t *testing.T) {
	data := []byte{0xfb, 0xff, 0x00}

	decoded, err := DecodeBase64URL(EncodeBase64URL(data))
	assert.NoError(t, err)
	assert.Equal(t, data, decoded)
	assert.Equal(t, "-_8A", EncodeBase64URL(data))
}

func TestAbsoluteURL(t *testing.T) {
	for _, value := range []string{"", "https://vault.test", "http://localhost:8443/path"} {
		assert.NoError(t, AbsoluteURL.Validate(value), value)
	}
	for _, value := range []string{"not a url", "/relative", "ftp://vault.test", "https://"} {
		assert.Error(t, AbsoluteURL.Validate(value), value)
	}
}
