package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// 退出码：0 成功，1 运行失败，2 参数错误。
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

func main() {
	os.Exit(execute(os.Args[1:]))
}

// cliState 汇总命令执行过程中的共享状态，便于在测试中注入。
type cliState struct {
	configFlag string
	exitCode   int
}

// execute 解析参数并执行子命令，返回退出码。
func execute(args []string) int {
	state := &cliState{}
	root := state.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdOut)
	root.SetErr(stdErr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stdErr, err.Error())
		return exitUsage
	}
	return state.exitCode
}

func (s *cliState) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "pitwall",
		Short:         "F1 data cache and artifact publisher",
		Long:          "pitwall keeps F1 schedule, session results and standings fresh on disk and serves them as JSON artifacts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 PITWALL_CONFIG 覆盖）")

	root.AddCommand(
		s.updateCommand(),
		s.cleanupCommand(),
		s.statsCommand(),
		s.serveCommand(),
		s.checkConfigCommand(),
		s.versionCommand(),
	)
	return root
}
