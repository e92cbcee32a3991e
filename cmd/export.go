package cmd

import (
	"github.com/pawonsalam/restosuite/internal/cloudwriter"
	"github.com/pawonsalam/restosuite/internal/export"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the employee roster to a Parquet file",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		ctx := cmd.Context()

		store, err := openUserStore(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer store.close()

		var factory cloudwriter.CloudWriterFactory
		if cfg.Export.Bucket != "" {
			s3Factory, err := cloudwriter.NewS3WriterFactory(ctx, cfg.Export.Region)
			if err != nil {
				return err
			}
			factory = s3Factory
		}

		_, err = export.NewExporter(store.users, factory, cfg.Export.Bucket).Export(ctx, out)
		return err
	},
}

func init() {
	exportCmd.Flags().String("out", "employees.parquet", "Output file, or object key when a bucket is set")
	exportCmd.Flags().String("bucket", "", "S3 bucket to upload to instead of the local filesystem")
	viper.BindPFlag("export.bucket", exportCmd.Flags().Lookup("bucket"))
	rootCmd.AddCommand(exportCmd)
}
