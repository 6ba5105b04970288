package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/gacetilla/internal/token"
)

type client struct {
	BaseURL   string
	OutFormat string // "json" | "text"
	HTTP      *http.Client
}

func (c *client) do(method, path string, body []byte) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	if c.OutFormat == "json" {
		var v any
		if json.Unmarshal(body, &v) == nil {
			p, _ := json.MarshalIndent(v, "", "  ")
			fmt.Println(string(p))
			return
		}
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	var (
		usersURL = envOr("GAZCTL_USERS_URL", "http://localhost:8082")
		authURL  = envOr("GAZCTL_AUTH_URL", "http://localhost:8081")
		out      = envOr("GAZCTL_OUT", "text")
		timeout  = 30 * time.Second
	)

	root := &cobra.Command{
		Use:   "gazctl",
		Short: "CLI de operación para gacetilla (users + auth)",
	}

	root.PersistentFlags().StringVar(&usersURL, "users-url", usersURL, "URL base del user service (env GAZCTL_USERS_URL)")
	root.PersistentFlags().StringVar(&authURL, "auth-url", authURL, "URL base del auth service (env GAZCTL_AUTH_URL)")
	root.PersistentFlags().StringVar(&out, "out", out, "Formato de salida: json|text")

	httpClient := &http.Client{Timeout: timeout}
	users := &client{OutFormat: out, HTTP: httpClient}
	auth := &client{OutFormat: out, HTTP: httpClient}
	syncClients := func() {
		users.BaseURL, users.OutFormat = usersURL, out
		auth.BaseURL, auth.OutFormat = authURL, out
	}

	// ping: healthz de ambos servicios
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Ping a users y auth (/healthz)",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClients()
			for name, cl := range map[string]*client{"users": users, "auth": auth} {
				status, body, err := cl.do("GET", "/healthz", nil)
				if err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
				if status/100 != 2 {
					return fmt.Errorf("%s: status=%d body=%s", name, status, string(body))
				}
				fmt.Printf("%s ok\n", name)
			}
			return nil
		},
	}

	// seed: roles y permisos base. Los 409 se consideran éxito (ya sembrado).
	var seedAdminRole string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Sembrar roles y permisos base en el user service",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClients()
			roles := []string{"user", seedAdminRole}
			for _, name := range roles {
				b, _ := json.Marshal(map[string]string{"name": name})
				status, body, err := users.do("POST", "/roles", b)
				if err != nil {
					return err
				}
				switch {
				case status/100 == 2:
					fmt.Printf("role %q creado\n", name)
				case status == http.StatusConflict:
					fmt.Printf("role %q ya existe\n", name)
				default:
					return fmt.Errorf("role %q: status=%d body=%s", name, status, string(body))
				}
			}

			perms := map[string][]string{
				"article:read":   {"user", seedAdminRole},
				"article:write":  {"user", seedAdminRole},
				"article:delete": {seedAdminRole},
				"user:manage":    {seedAdminRole},
			}
			for name, allowed := range perms {
				b, _ := json.Marshal(map[string]any{"name": name, "allowedRoles": allowed})
				status, body, err := users.do("POST", "/permissions", b)
				if err != nil {
					return err
				}
				switch {
				case status/100 == 2:
					fmt.Printf("permission %q creado\n", name)
				case status == http.StatusConflict:
					fmt.Printf("permission %q ya existe\n", name)
				default:
					return fmt.Errorf("permission %q: status=%d body=%s", name, status, string(body))
				}
			}
			return nil
		},
	}
	seedCmd.Flags().StringVar(&seedAdminRole, "admin-role", "admin", "Nombre del rol administrador")

	// users: lecturas contra el user service
	usersCmd := &cobra.Command{Use: "users", Short: "Consultas al user service"}

	var getUsername string
	usersGetCmd := &cobra.Command{
		Use:   "get",
		Short: "Buscar un usuario por username",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClients()
			if getUsername == "" {
				return fmt.Errorf("--username es requerido")
			}
			status, body, err := users.do("GET", "/users/username/"+getUsername, nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("get fallo: status=%d body=%s", status, string(body))
			}
			users.print(status, body)
			return nil
		},
	}
	usersGetCmd.Flags().StringVar(&getUsername, "username", "", "Username a buscar")

	usersListCmd := &cobra.Command{
		Use:   "list",
		Short: "Listar usuarios",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncClients()
			status, body, err := users.do("GET", "/users", nil)
			if err != nil {
				return err
			}
			if status/100 != 2 {
				return fmt.Errorf("list fallo: status=%d body=%s", status, string(body))
			}
			users.print(status, body)
			return nil
		},
	}

	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersListCmd)

	// token: inspección local de access tokens
	tokenCmd := &cobra.Command{Use: "token", Short: "Operaciones sobre access tokens"}

	var inspectRaw, inspectSecret, inspectIssuer string
	tokenInspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Validar un token localmente e imprimir sus claims",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inspectRaw == "" {
				return fmt.Errorf("--token es requerido")
			}
			if inspectSecret == "" {
				inspectSecret = os.Getenv("JWT_SECRET")
			}
			v, err := token.NewValidator([]byte(inspectSecret), inspectIssuer)
			if err != nil {
				return err
			}
			claims, err := v.Validate(inspectRaw)
			if err != nil {
				return fmt.Errorf("token inválido: %w", err)
			}
			p, _ := json.MarshalIndent(claims, "", "  ")
			fmt.Println(string(p))
			return nil
		},
	}
	tokenInspectCmd.Flags().StringVar(&inspectRaw, "token", "", "Token a inspeccionar")
	tokenInspectCmd.Flags().StringVar(&inspectSecret, "secret", "", "Clave HS256 (env JWT_SECRET)")
	tokenInspectCmd.Flags().StringVar(&inspectIssuer, "issuer", "gacetilla-auth", "Issuer esperado")
	tokenCmd.AddCommand(tokenInspectCmd)

	root.AddCommand(pingCmd)
	root.AddCommand(seedCmd)
	root.AddCommand(usersCmd)
	root.AddCommand(tokenCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
