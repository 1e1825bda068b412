package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/stash/internal/core/domain"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [paths...]",
		Short: "Materialize artifacts into a target directory",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			targetDir, _ := cmd.Flags().GetString("target-dir")
			usePersistent, _ := cmd.Flags().GetBool("use-persistent-cache")
			team, _ := cmd.Flags().GetString("team")
			checksum, _ := cmd.Flags().GetString("checksum")
			algorithm, _ := cmd.Flags().GetString("checksum-algorithm")

			sources := make([]domain.ResolveSource, len(args))
			for i, path := range args {
				params := map[string]string{}
				if usePersistent {
					params[domain.ParamUsePersistentCache] = "true"
				}
				if team != "" {
					params[domain.ParamTeam] = team
				}
				if checksum != "" {
					params[domain.ParamChecksum] = checksum
					params[domain.ParamChecksumAlgorithm] = algorithm
				}
				sources[i] = domain.ResolveSource{
					Path:       path,
					Parameters: params,
					TargetDir:  targetDir,
				}
			}

			results, err := c.app.Resolve(cmd.Context(), sources)
			if err != nil {
				return err
			}
			for _, result := range results {
				for _, path := range result.Paths() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringP("target-dir", "t", ".", "Directory to materialize resolved files into")
	cmd.Flags().Bool("use-persistent-cache", false, "Consult and populate the shared disk cache")
	cmd.Flags().String("team", "", "Tenant label scoping shared cache entries")
	cmd.Flags().String("checksum", "", "Expected content checksum, lowercase hex")
	cmd.Flags().String("checksum-algorithm", string(domain.ChecksumSHA256), "Checksum algorithm: sha256 or xxh64")
	return cmd
}
