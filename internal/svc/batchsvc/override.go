package batchsvc

import (
	"strings"

	"github.com/yusufsyaifudin/ngirim/internal/svc/senderrepo"
	"github.com/yusufsyaifudin/ngirim/pkg/mailclient"
)

// ProviderOverride forces known-good connection parameters for sender
// addresses matching a domain suffix, regardless of what the sender
// config declares. Kept as a declarative table so overrides stay
// testable instead of being special-cased inside the send loop.
type ProviderOverride struct {
	DomainSuffix string
	Host         string
	Port         int
	UseSSL       bool
	UseTLS       bool
}

// BuiltinOverrides covers providers that are unreliable through
// generic configuration. 139 mail rejects most user-declared setups,
// so its known-good endpoint always wins.
func BuiltinOverrides() []ProviderOverride {
	return []ProviderOverride{
		{
			DomainSuffix: "@139.com",
			Host:         "smtp.139.com",
			Port:         465,
			UseSSL:       true,
		},
	}
}

// buildCredential derives the connection credential from a sender
// config, then lets the first matching override rewrite it. Overrides
// are checked in slice order, first suffix match wins.
func buildCredential(cfg senderrepo.SenderConfig, password string, overrides []ProviderOverride) mailclient.Credential {
	cred := mailclient.Credential{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SenderEmail,
		Password: password,
		UseSSL:   cfg.UseSSL,
		UseTLS:   cfg.UseTLS,
	}

	sender := strings.ToLower(strings.TrimSpace(cfg.SenderEmail))
	for _, ov := range overrides {
		if !strings.HasSuffix(sender, strings.ToLower(ov.DomainSuffix)) {
			continue
		}

		cred.Host = ov.Host
		cred.Port = ov.Port
		cred.UseSSL = ov.UseSSL
		cred.UseTLS = ov.UseTLS
		break
	}

	return cred
}
