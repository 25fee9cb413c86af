package ui

import (
	"context"
	"fmt"
	"time"

	termui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
	"gitlab.com/aoterocom/AOAlgoRuntime/exchange"
	"gitlab.com/aoterocom/AOAlgoRuntime/helpers"
	"gitlab.com/aoterocom/AOAlgoRuntime/models"
)

// UserInterface renders the live session dashboard: mark price, account
// balances, positions, open orders, realized P&L and the last log lines.
type UserInterface struct {
	core    *exchange.Exchange
	tracker *exchange.StatusTracker
	pair    string
	logList *[]string
}

func NewUserInterface(core *exchange.Exchange, tracker *exchange.StatusTracker, pair string) *UserInterface {
	return &UserInterface{
		core:    core,
		tracker: tracker,
		pair:    pair,
	}
}

func (ui *UserInterface) SetLogList(logList *[]string) {
	ui.logList = logList
}

func (ui *UserInterface) Run(ctx context.Context) error {
	if err := termui.Init(); err != nil {
		return fmt.Errorf("failed to initialize termui: %w", err)
	}
	defer termui.Close()

	events := termui.PollEvents()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-events:
			if event.Type == termui.KeyboardEvent && (event.ID == "q" || event.ID == "<C-c>") {
				return nil
			}
		case <-time.After(1 * time.Second):
		}

		sessionParagraph := widgets.NewParagraph()
		sessionParagraph.BorderStyle.Fg = termui.ColorYellow
		sessionParagraph.TitleStyle.Fg = termui.ColorYellow
		sessionParagraph.Block.Title = "Session " + ui.pair
		if mark, err := ui.tracker.LatestPrice(ui.pair); err == nil {
			sessionParagraph.Text = fmt.Sprintf("[Current Price: %.8f](fg:blue)\n", mark.Mark)
			sessionParagraph.Text += fmt.Sprintf("Last Update: %s\n",
				time.Unix(mark.Timestamp/1000, 0).Format("15:04:05"))
		} else {
			sessionParagraph.Text = "Waiting for market data...\n"
		}
		sessionParagraph.SetRect(0, 0, 34, 6)

		balancesParagraph := widgets.NewParagraph()
		balancesParagraph.Block.Title = "Account"
		if balances, err := ui.core.GetBalances(ctx); err == nil {
			for currency, data := range balances.Currencies {
				balancesParagraph.Text += fmt.Sprintf("%s: %.8f\n", currency, data.Free)
			}
		}
		balancesParagraph.SetRect(34, 0, 68, 6)

		positionsParagraph := widgets.NewParagraph()
		positionsParagraph.Block.Title = "Positions"
		totalPNL := 0.0
		for _, position := range ui.core.Positions.All() {
			positionsParagraph.Text += fmt.Sprintf("%s %s: %.8f @ %.8f\n",
				position.Pair, position.PositionType, position.Balance(), position.AverageOpen())
			totalPNL += position.TotalPNL()
		}
		positionsParagraph.SetRect(0, 6, 34, 12)

		ordersParagraph := widgets.NewParagraph()
		ordersParagraph.Block.Title = "Open Orders"
		openOrders := ui.core.Orders.GetOrdersByStatus(models.OrderStatusOpen)
		ordersParagraph.Text = fmt.Sprintf("Total: %d\n", len(openOrders))
		for _, order := range openOrders {
			ordersParagraph.Text += fmt.Sprintf("%s %s %.8f @ %.8f\n",
				order.TradeType, order.Pair, order.Quantity, order.Price)
		}
		ordersParagraph.SetRect(34, 6, 68, 12)

		pAndLParagraph := widgets.NewParagraph()
		pAndLParagraph.Block.Title = "P&L"
		if totalPNL >= 0 {
			pAndLParagraph.Text = fmt.Sprintf("[Realized: %.8f](fg:green)\n", totalPNL)
		} else {
			pAndLParagraph.Text = fmt.Sprintf("[Realized: %.8f](fg:red)\n", totalPNL)
		}
		pAndLParagraph.Text += fmt.Sprintf("Trades: %d\n", ui.core.Trades.Count())
		pAndLParagraph.SetRect(68, 0, 100, 6)

		operationsList := widgets.NewList()
		operationsList.Block.Title = "Operations"
		if ui.logList != nil {
			operationsList.Rows = *ui.logList
		}
		operationsList.SetRect(0, 12, 100, 24)

		termui.Render(sessionParagraph, balancesParagraph, positionsParagraph,
			ordersParagraph, pAndLParagraph, operationsList)
	}
}

// AppendLog keeps the on-screen operations list at a fixed depth.
func AppendLog(logList *[]string, message string) {
	*logList = append(*logList, message)
	if len(*logList) > 10 {
		*logList = (*logList)[len(*logList)-10:]
	}
	helpers.Logger.Infoln(message)
}
