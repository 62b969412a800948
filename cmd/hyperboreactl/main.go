// Command hyperboreactl is an operator CLI for a hyperborea server
// node: connect, look up a client, send a message, and poll an inbox.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	hyperboreaclient "github.com/hyperborea-go/hyperborea/client"
	"github.com/hyperborea-go/hyperborea/crypto"
	"github.com/hyperborea-go/hyperborea/internal/version"
	"github.com/hyperborea-go/hyperborea/restapi"
	httptransport "github.com/hyperborea-go/hyperborea/transport/http"
)

var (
	serverAddress string
	secretKeyB64  string
)

var rootCmd = &cobra.Command{
	Use:     "hyperboreactl",
	Short:   "operator CLI for a hyperborea server node",
	Version: version.String(),
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&serverAddress, "server", "localhost:7700", "server address to connect through")
	rootCmd.PersistentFlags().StringVar(&secretKeyB64, "secret-key", "", "base64 secret key (generates an ephemeral one if omitted)")

	rootCmd.AddCommand(connectCmd, lookupCmd, sendCmd, pollCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadSecretKey() (crypto.SecretKey, error) {
	if secretKeyB64 == "" {
		return crypto.GenerateSecretKey()
	}
	return crypto.SecretKeyFromBase64(secretKeyB64)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "connect to a server and print the resulting identity",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := loadSecretKey()
		if err != nil {
			return err
		}

		conn, err := hyperboreaclient.Connect(cmd.Context(), httptransport.NewHTTPTransport(), secret, serverAddress)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		printJSON(map[string]any{
			"public_key": conn.PublicKey().Base64(),
			"server":     conn.Server(),
		})
		return nil
	},
}

var lookupClientType string

var lookupCmd = &cobra.Command{
	Use:   "lookup <public-key-base64>",
	Short: "look up a client by public key, chasing server hints as needed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := loadSecretKey()
		if err != nil {
			return err
		}
		targetPK, err := crypto.PublicKeyFromBase64(args[0])
		if err != nil {
			return fmt.Errorf("parse target public key: %w", err)
		}

		conn, err := hyperboreaclient.Connect(cmd.Context(), httptransport.NewHTTPTransport(), secret, serverAddress)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		var clientType *restapi.ClientType
		if lookupClientType != "" {
			ct := restapi.ClientType(lookupClientType)
			clientType = &ct
		}

		result, err := conn.Lookup(cmd.Context(), targetPK, clientType)
		if err != nil {
			return fmt.Errorf("lookup: %w", err)
		}

		printJSON(result)
		return nil
	},
}

var (
	sendChannel string
	sendText    string
)

var sendCmd = &cobra.Command{
	Use:   "send <receiver-public-key-base64>",
	Short: "send a plaintext message to a receiver's channel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := loadSecretKey()
		if err != nil {
			return err
		}
		receiverPK, err := crypto.PublicKeyFromBase64(args[0])
		if err != nil {
			return fmt.Errorf("parse receiver public key: %w", err)
		}

		conn, err := hyperboreaclient.Connect(cmd.Context(), httptransport.NewHTTPTransport(), secret, serverAddress)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		encoding := restapi.MessageEncoding{
			Encryption:  crypto.EncryptionAES256GCM,
			Compression: crypto.CompressionNone,
		}
		msg, err := restapi.CreateMessage(secret, receiverPK, []byte(sendText), encoding, crypto.CompressionFast)
		if err != nil {
			return fmt.Errorf("create message: %w", err)
		}

		if err := conn.Send(cmd.Context(), receiverPK, sendChannel, msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}
		fmt.Println("sent")
		return nil
	},
}

var (
	pollChannel string
	pollLimit   int
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "poll this identity's inbox for a channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, err := loadSecretKey()
		if err != nil {
			return err
		}

		conn, err := hyperboreaclient.Connect(cmd.Context(), httptransport.NewHTTPTransport(), secret, serverAddress)
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		var limit *int
		if pollLimit > 0 {
			limit = &pollLimit
		}

		messages, remaining, err := conn.Poll(cmd.Context(), pollChannel, limit)
		if err != nil {
			return fmt.Errorf("poll: %w", err)
		}

		decoded := make([]map[string]any, 0, len(messages))
		for _, m := range messages {
			plaintext, err := restapi.ReadMessage(secret, m.Sender.Client.PublicKey, m.Message)
			entry := map[string]any{
				"sender":  m.Sender.Client.PublicKey.Base64(),
				"channel": m.Channel,
			}
			if err != nil {
				entry["error"] = err.Error()
			} else {
				entry["content"] = string(plaintext)
			}
			decoded = append(decoded, entry)
		}

		printJSON(map[string]any{
			"messages":  decoded,
			"remaining": remaining,
		})
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupClientType, "type", "", "restrict the lookup to a client type")

	sendCmd.Flags().StringVar(&sendChannel, "channel", "default", "channel to send on")
	sendCmd.Flags().StringVar(&sendText, "message", "", "plaintext message content")
	_ = sendCmd.MarkFlagRequired("message")

	pollCmd.Flags().StringVar(&pollChannel, "channel", "default", "channel to poll")
	pollCmd.Flags().IntVar(&pollLimit, "limit", 0, "maximum number of messages to return (0 means unlimited)")
}
