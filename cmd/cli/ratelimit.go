package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show rate-limiter backend health and counter sizes.",
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := adminGet("/admin/v1/ratelimit/stats")
		if err != nil {
			return err
		}
		fmt.Println(body)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset <identity>",
	Short: "Clear all rate-limit counters and the risk profile for an identity.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := adminDelete("/admin/v1/ratelimit/" + url.PathEscape(args[0]))
		if err != nil {
			return err
		}
		fmt.Println(body)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
}

func adminGet(path string) (string, error) {
	return adminDo(http.MethodGet, path)
}

func adminDelete(path string) (string, error) {
	return adminDo(http.MethodDelete, path)
}

func adminDo(method, path string) (string, error) {
	client := &http.Client{Timeout: 10 * time.Second}

	req, err := http.NewRequest(method, adminAddr+path, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("admin server returned %s: %s", resp.Status, body)
	}
	return string(body), nil
}
