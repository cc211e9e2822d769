package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	openaisdk "github.com/openai/openai-go"
	"github.com/rs/zerolog/log"
	responderx "github.com/storelane/shopassist/agent/agents/responder"
	safetyx "github.com/storelane/shopassist/agent/agents/safety"
	enginex "github.com/storelane/shopassist/agent/engine"
	llmx "github.com/storelane/shopassist/agent/llm"
	promptx "github.com/storelane/shopassist/agent/prompt"
	statex "github.com/storelane/shopassist/agent/state"
	toolx "github.com/storelane/shopassist/agent/tool"
	configx "github.com/storelane/shopassist/pkg/config"
	_ "github.com/storelane/shopassist/pkg/logger/autoload"
	openrouterx "github.com/storelane/shopassist/pkg/openrouter"
)

func main() {
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		panic("failed to initialize openrouter client")
	}

	llmCfg := configx.MustNew[llmx.Config]("LLM")
	if err := llmCfg.Validate(); err != nil {
		panic(err)
	}

	eng, err := buildEngine(openRouterClient, llmCfg)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runChat(ctx, eng)
}

func buildEngine(api *openaisdk.Client, llmCfg *llmx.Config) (*enginex.Engine, error) {
	safetyModel, err := llmx.NewClient(api, llmCfg.SettingsFor(llmx.AgentKindSafety))
	if err != nil {
		return nil, err
	}
	routerModel, err := llmx.NewClient(api, llmCfg.SettingsFor(llmx.AgentKindRouter))
	if err != nil {
		return nil, err
	}
	responderModel, err := llmx.NewClient(api, llmCfg.SettingsFor(llmx.AgentKindResponder))
	if err != nil {
		return nil, err
	}

	catalogCfg := configx.MustNew[toolx.ProductCatalogConfig]("PRODUCTS")
	catalog, err := toolx.NewProductCatalog(*catalogCfg)
	if err != nil {
		return nil, err
	}

	docsCfg := configx.MustNew[toolx.DocsConfig]("DOCS")
	docs, err := toolx.NewDocSource(*docsCfg)
	if err != nil {
		return nil, err
	}

	ordersCfg := configx.MustNew[toolx.OrdersConfig]("ORDERS")
	orderDB, err := toolx.OpenOrderDB(ordersCfg.DSN)
	if err != nil {
		return nil, err
	}
	orders, err := toolx.NewOrderStore(orderDB)
	if err != nil {
		return nil, err
	}

	gateway := toolx.NewGateway(catalog, docs, orders)
	prompts := promptx.LoadPromptSet()

	gate, err := safetyx.NewGate(safetyModel, prompts.Safety)
	if err != nil {
		return nil, err
	}

	registry, err := responderx.NewRegistry(routerModel, responderModel, gateway, responderx.DefaultDescriptors(prompts))
	if err != nil {
		return nil, err
	}

	return enginex.New(gate, registry)
}

func runChat(ctx context.Context, eng *enginex.Engine) {
	sessions := statex.NewManager()
	session, greeting := sessions.Start("")
	defer sessions.End(session.ID())

	fmt.Println(greeting)
	fmt.Println(`Type your message, or "exit" to quit.`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.EqualFold(text, "exit") || strings.EqualFold(text, "quit") {
			fmt.Println("Goodbye!")
			return
		}

		stream := eng.ProcessTurn(ctx, session, text)
		for fragment := range stream.Fragments() {
			fmt.Print(fragment)
		}
		fmt.Println()

		if err := stream.Err(); err != nil {
			log.Error().Err(err).Str("session", session.ID()).Msg("turn failed")
			fmt.Println("Sorry, something went wrong while answering. Please try again.")
		}

		if ctx.Err() != nil {
			return
		}
	}
}
