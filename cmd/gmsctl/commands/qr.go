package commands

import (
	"github.com/spf13/cobra"

	"campus-gms/qrscan"
)

// QRCommands returns helpers for room QR codes.
func QRCommands(app *App) *cobra.Command {
	qrCmd := &cobra.Command{
		Use:   "qr",
		Short: "Decode and encode room QR payloads",
		// no server needed
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	}

	qrCmd.AddCommand(&cobra.Command{
		Use:   "decode <payload>",
		Short: "Show the location a QR payload carries",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			loc, err := qrscan.Parse(args[0])
			if err != nil {
				return err
			}
			app.printf("block: %s\nfloor: %s\nroom:  %s\n", loc.Block, loc.Floor, loc.Room)
			return nil
		},
	})

	var loc qrscan.Location
	encode := &cobra.Command{
		Use:   "encode",
		Short: "Print the payload to put on a room's QR code",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			app.printf("%s\n", loc.Query())
			return nil
		},
	}
	encode.Flags().StringVar(&loc.Block, "block", "", "block")
	encode.Flags().StringVar(&loc.Floor, "floor", "", "floor")
	encode.Flags().StringVar(&loc.Room, "room", "", "room")
	_ = encode.MarkFlagRequired("block")
	qrCmd.AddCommand(encode)
	return qrCmd
}
