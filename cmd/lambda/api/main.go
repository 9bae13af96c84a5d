package main

import (
	awslambda "github.com/aws/aws-lambda-go/lambda"

	"function-url-api/pkg/lambda"
)

func main() {
	runtime := lambda.NewRuntime(lambda.DefaultBuild)
	defer runtime.Close()

	awslambda.Start(runtime.Handler())
}
