package vault

import (
	"errors"

	"github.com/lamassuiot/ca-material-validator/pkg/engine"
	"github.com/lamassuiot/ca-material-validator/pkg/secrets/material"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/hashicorp/vault/api"
)

type vaultSecrets struct {
	client *api.Client
	path   string
	logger log.Logger
}

// NewVaultSecrets serves the key material from the fields of a single Vault
// secret: "bundle", "private_key" and the optional "crl_chain", each a PEM
// string.
func NewVaultSecrets(address string, roleID string, secretID string, CA string, path string, logger log.Logger) (material.Secrets, error) {
	conf := api.DefaultConfig()
	conf.Address = address
	tlsConf := &api.TLSConfig{CACert: CA}
	conf.ConfigureTLS(tlsConf)
	client, err := api.NewClient(conf)
	if err != nil {
		level.Error(logger).Log("err", err, "msg", "Could not create Vault API client")
		return nil, err
	}

	if err = login(client, roleID, secretID); err != nil {
		level.Error(logger).Log("err", err, "msg", "Could not login into Vault")
		return nil, err
	}
	return &vaultSecrets{client: client, path: path, logger: logger}, nil
}

func login(client *api.Client, roleID string, secretID string) error {
	loginPath := "auth/approle/login"
	options := map[string]interface{}{
		"role_id":   roleID,
		"secret_id": secretID,
	}
	resp, err := client.Logical().Write(loginPath, options)
	if err != nil {
		return err
	}
	client.SetToken(resp.Auth.ClientToken)
	return nil
}

func (vs *vaultSecrets) GetBundle() engine.Source {
	return vs.read("bundle", true)
}

func (vs *vaultSecrets) GetKey() engine.Source {
	return vs.read("private_key", true)
}

func (vs *vaultSecrets) GetCRLChain() engine.Source {
	return vs.read("crl_chain", false)
}

func (vs *vaultSecrets) read(field string, required bool) engine.Source {
	slot := vs.path + "#" + field
	resp, err := vs.client.Logical().Read(vs.path)
	if err != nil {
		level.Error(vs.logger).Log("err", err, "msg", "Could not read secret from Vault", "path", vs.path)
		return engine.UnreadableSource(slot, err)
	}
	if resp == nil {
		err = errors.New("secret not found")
		level.Error(vs.logger).Log("err", err, "path", vs.path)
		return engine.UnreadableSource(slot, err)
	}
	pemData, ok := resp.Data[field].(string)
	if !ok {
		if !required {
			return engine.MissingSource()
		}
		err = errors.New("field " + field + " not present in secret")
		level.Error(vs.logger).Log("err", err, "path", vs.path)
		return engine.UnreadableSource(slot, err)
	}
	return engine.NewSource(slot, []byte(pemData))
}
