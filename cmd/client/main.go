package main

import (
	"fmt"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"

	"github.com/ines1102/SeriousGame-sub000/internal/logger"
	"github.com/ines1102/SeriousGame-sub000/internal/ui"
)

func main() {
	serverAddr := flag.StringP("server", "s", "localhost:3000", "服务器地址")
	flag.Parse()

	// 日志写入文件，避免干扰终端界面
	if err := logger.Init(); err != nil {
		log.Printf("初始化日志失败: %v", err)
	}
	defer logger.Close()

	serverURL := fmt.Sprintf("ws://%s/ws", *serverAddr)

	p := tea.NewProgram(ui.NewModel(serverURL), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
