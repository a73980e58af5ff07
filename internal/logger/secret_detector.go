package logger

import (
	"regexp"
)

const (
	// presigned url query parameters carrying signatures or credentials
	presignedParamPattern  = `(?i)(X-Amz-Signature|X-Amz-Credential|X-Amz-Security-Token|X-Goog-Signature|X-Goog-Credential|GoogleAccessId|Signature|sig)=([^&\s"']+)`
	awsKeyPattern          = `(?i)(aws_key_id|aws_secret_key|access_key_id|secret_access_key)\s*=\s*'([^']+)'`
	accountKeyPattern      = `(?i)(AccountKey)=([^;\s]+)`
	connectionTokenPattern = `(?i)(token|assertion content)([\'\"\s:=]+)([a-z0-9=/_\-\+]{8,})`
	passwordPattern        = `(?i)(password|pwd)([\'\"\s:=]+)([a-z0-9!\"#\$%&\\\'\(\)\*\+\,-\./:;<=>\?\@\[\]\^_\{\|\}~]{8,})`
	dsnPasswordPattern     = `([^/:\s]+):([^@/:\s]{3,})@` // user:password@host in DSN strings
	bearerTokenPattern     = `(?i)(bearer)\s+([a-z0-9._\-~+/]+=*)`
	privateKeyPattern      = `(?s)-----BEGIN ([A-Z ]*)PRIVATE KEY-----.*?-----END ([A-Z ]*)PRIVATE KEY-----`
)

var (
	presignedParamRegexp  = regexp.MustCompile(presignedParamPattern)
	awsKeyRegexp          = regexp.MustCompile(awsKeyPattern)
	accountKeyRegexp      = regexp.MustCompile(accountKeyPattern)
	connectionTokenRegexp = regexp.MustCompile(connectionTokenPattern)
	passwordRegexp        = regexp.MustCompile(passwordPattern)
	dsnPasswordRegexp     = regexp.MustCompile(dsnPasswordPattern)
	bearerTokenRegexp     = regexp.MustCompile(bearerTokenPattern)
	privateKeyRegexp      = regexp.MustCompile(privateKeyPattern)
)

type secretmasker string

func (s secretmasker) maskPresignedParams() secretmasker {
	return secretmasker(presignedParamRegexp.ReplaceAllString(s.String(), "${1}=****"))
}

func (s secretmasker) maskAwsKey() secretmasker {
	return secretmasker(awsKeyRegexp.ReplaceAllString(s.String(), "${1}='****'"))
}

func (s secretmasker) maskAccountKey() secretmasker {
	return secretmasker(accountKeyRegexp.ReplaceAllString(s.String(), "${1}=****"))
}

func (s secretmasker) maskConnectionToken() secretmasker {
	return secretmasker(connectionTokenRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskPassword() secretmasker {
	return secretmasker(passwordRegexp.ReplaceAllString(s.String(), "$1${2}****"))
}

func (s secretmasker) maskDsnPassword() secretmasker {
	return secretmasker(dsnPasswordRegexp.ReplaceAllString(s.String(), "$1:****@"))
}

func (s secretmasker) maskBearerToken() secretmasker {
	return secretmasker(bearerTokenRegexp.ReplaceAllString(s.String(), "$1 ****"))
}

func (s secretmasker) maskPrivateKey() secretmasker {
	return secretmasker(privateKeyRegexp.ReplaceAllString(s.String(), "-----BEGIN ${1}PRIVATE KEY-----XXXX-----END ${2}PRIVATE KEY-----"))
}

func (s secretmasker) String() string {
	return string(s)
}

// MaskSecrets masks secrets in text, including presigned url signatures.
func MaskSecrets(text string) string {
	return secretmasker(text).
		maskPrivateKey().
		maskPresignedParams().
		maskAwsKey().
		maskAccountKey().
		maskBearerToken().
		maskConnectionToken().
		maskPassword().
		maskDsnPassword().
		String()
}
