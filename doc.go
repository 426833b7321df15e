// Package crewforge turns plain-English descriptions of multi-agent
// workflows into validated configurations and runnable orchestration code.
//
// CrewForge asks a language model to describe the workflow as structured
// JSON, parses and validates that output into a framework-neutral
// configuration, then renders the configuration as source code for one of
// five targets: CrewAI, CrewAI Flow, LangGraph, ReAct, or ReAct with LCEL.
//
// # Quick Start
//
// Install CrewForge:
//
//	go install github.com/crewforge/crewforge/cmd/crewforge@latest
//
// Generate a crew from a description:
//
//	export OPENAI_API_KEY=sk-...
//	crewforge generate "Build a two-agent research assistant that finds \
//	  papers and summarizes them" --framework crewai --output crew.py
//
// Render a previously saved configuration without calling a model:
//
//	crewforge render --workflow crew.json --format code
//
// # Using as Go Library
//
// Import the pipeline and wire in a completion client:
//
//	import (
//	    "github.com/crewforge/crewforge/pkg/llms"
//	    "github.com/crewforge/crewforge/pkg/pipeline"
//	)
//
//	client, _ := llms.New(&cfg.LLM)
//	orc := pipeline.New(client)
//	result, err := orc.Generate(ctx, pipeline.Request{
//	    Text:      "Build a two-agent research assistant",
//	    Framework: workflow.FrameworkCrewAI,
//	})
//
// # Key Features
//
//   - **Five targets**: CrewAI, CrewAI Flow, LangGraph, ReAct, ReAct-LCEL
//   - **Typed failures**: every error names the stage and the violated rule
//   - **Tolerant parsing**: JSON extraction and bounded repair over raw
//     model output
//   - **Process inference**: sequential vs. hierarchical topology decided
//     from explicit choice, model recommendation, or heuristics
//   - **Provider-agnostic**: OpenAI, Anthropic, Gemini, and Ollama behind
//     one completion interface
//
// # Architecture
//
// One linear pipeline per request:
//
//	request → prompt builder → completion client → parser/validator →
//	process selector → renderer → artifact
//
// The configuration model is the contract between stages; a configuration
// that reaches a renderer has already passed every structural invariant.
package crewforge
