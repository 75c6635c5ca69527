package cli

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/eltatrack/courier-webhooks/internal/core/domain"
	"github.com/eltatrack/courier-webhooks/internal/emitter"
)

var emitFlags struct {
	url           string
	apiKey        string
	voucher       string
	statusCode    string
	comments      string
	station       string
	stationName   string
	returnVoucher string
}

var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Post one status update to a receiver",
	Example: `  statusctl emit --url http://localhost:8080/webhook --api-key secret \
      --voucher ABC123 --status 9432 --station ATH1 --station-name "Athens Hub"`,
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().StringVar(&emitFlags.url, "url", "http://localhost:8080/webhook", "receiver webhook URL")
	emitCmd.Flags().StringVar(&emitFlags.apiKey, "api-key", "", "shared secret for the APIKEY header")
	emitCmd.Flags().StringVar(&emitFlags.voucher, "voucher", "", "voucher identifier")
	emitCmd.Flags().StringVar(&emitFlags.statusCode, "status", "",
		"status code ("+strings.Join(domain.KnownStatusCodes(), ", ")+")")
	emitCmd.Flags().StringVar(&emitFlags.comments, "comments", "", "free-text comments")
	emitCmd.Flags().StringVar(&emitFlags.station, "station", "", "station code")
	emitCmd.Flags().StringVar(&emitFlags.stationName, "station-name", "", "station name (EN)")
	emitCmd.Flags().StringVar(&emitFlags.returnVoucher, "return-voucher", "", "return voucher (return status only)")

	_ = emitCmd.MarkFlagRequired("api-key")

	rootCmd.AddCommand(emitCmd)
}

func runEmit(cmd *cobra.Command, _ []string) error {
	client := emitter.NewClient(emitFlags.url, emitFlags.apiKey, zerolog.Nop())

	event, err := client.BuildEvent(emitter.Input{
		Voucher:       emitFlags.voucher,
		StatusCode:    emitFlags.statusCode,
		Comments:      emitFlags.comments,
		Station:       emitFlags.station,
		StationName:   emitFlags.stationName,
		ReturnVoucher: emitFlags.returnVoucher,
	})
	if err != nil {
		return err
	}

	res, err := client.Send(cmd.Context(), event)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "HTTP %d: %s\n", res.HTTPStatus, res.Body)
	if res.HTTPStatus >= 400 {
		return fmt.Errorf("receiver rejected the update (HTTP %d)", res.HTTPStatus)
	}
	return nil
}
