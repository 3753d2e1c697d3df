package docs

var topics = []Topic{
	{
		Name:    "quickstart",
		Title:   "Quick Start",
		Summary: "Generating your first SmartThings project",
		Content: topicQuickstart,
	},
	{
		Name:    "app-types",
		Title:   "App Types",
		Summary: "What each Node app type generates",
		Content: topicAppTypes,
	},
	{
		Name:    "answers",
		Title:   "Answers Files and Options",
		Summary: "Running without prompts: --answers, flags and environment",
		Content: topicAnswers,
	},
}

const topicQuickstart = `QUICK START

stgen creates SmartThings projects from a short list of questions.

  stgen            Ask which language to use, then run that generator
  stgen node       NodeJS SmartApp or ST Schema connector
  stgen java       Java Spring Boot SmartApp

Each generator asks its questions in order. Questions that do not apply
to earlier answers are skipped: an ST Schema connector is never asked for
SmartApp permissions, and AWS credentials are only asked for when DynamoDB
is the context store.

The project is written to a new folder named after the app identifier
(node) or the folder name answer (java) inside the current directory, or
inside --dest when given. An existing folder is never overwritten.

Files are written to a temporary folder first and moved into place once
every file has been rendered, so an interrupted run leaves nothing behind.

After writing, stgen installs dependencies with the chosen package
manager (skip with --skip-install), runs "git init" when requested and
applies lint fixes when a linter was chosen.

REGISTERING A SMARTAPP

When a SmartThings personal access token is given for a SmartApp, stgen
registers the app in your Developer Workspace before writing anything.
The app id and OAuth client credentials are written to .env. If
registration fails (bad token, name already taken), no files are written
and the run stops with:

  An error occurred when creating your SmartThings app. Try again.

After a successful registration stgen prints the curl command that
confirms the app.
`

const topicAppTypes = `APP TYPES

smartapp         Automation SmartApp built on @smartthings/smartapp.
                 Webhook (express) or AWS Lambda hosting, optional
                 DynamoDB context store, VS Code settings, locales.
                 Registered with SmartThings when a token is given.

c2c-st-schema    ST Schema cloud connector: an express server using
                 body-parser and request.

c2c-smartapp     Cloud device integration SmartApp. Not selectable yet;
                 when preset it shares the ST Schema project layout.

api-only         API access SmartApp. Not available yet.

The dependencies of package.json are assembled from the app type and the
hosting, context store, tester, git and linter answers, in that order.
A later choice overrides an earlier one for the same entry.

Use --app-type with the short names above to skip the type question:

  stgen node --app-type c2c-st-schema
`

const topicAnswers = `ANSWERS FILES AND OPTIONS

Answers can be supplied before the run so that stgen does not ask.

FLAGS (node)

  --app-type          smartapp | c2c-st-schema | c2c-smartapp | api-only
  --app-display-name  display name
  --app-name          app identifier (letters, digits and dashes)
  --app-description   description

A flag value that is not accepted (an unknown app type, an invalid
identifier) is reported and the question is asked instead.

ANSWERS FILE

  stgen node --answers answers.yaml

The file maps question ids to answers:

  type: app-smartapp
  displayName: My App
  smartAppPermissions: [r:devices:*, x:devices:*]
  hostingProvider: express
  gitInit: false

Confirm questions take true/false (yes/no also work), checkbox questions
take a list, list questions take one of the choice values. Questions not
in the file take their default without prompting. Flags win over the file.

ENVIRONMENT

A .env file in the working directory is loaded before the run.

  SMARTTHINGS_PAT      presets the personal access token answer
  SMARTTHINGS_API_URL  registry base URL (default https://api.smartthings.com)
`
