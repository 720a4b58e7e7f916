package console

const msgHelp = `Learn with Jasper - multiplication tables practice.

Account:
  login USERNAME PASSWORD
  register USERNAME PASSWORD DISPLAY NAME [confirm=PASSWORD] [email=ADDRESS] [birthday=YYYY-MM-DD]
  logout
  whoami

Quiz:
  tables            show selected tables
  toggle N          add or remove table N (2-12)
  start [N...]      start a new session, optionally with tables N...
  digit D           type one digit
  clear             clear your answer
  submit            check your answer
  answer N          type N and submit it
  stop              end the session early and save it
  state             show the current session

Stats:
  history           your past sessions
  leaderboard       top 10 players
  export PATH       save the leaderboard as CSV

  help              show this text
  quit              exit`

const msgWelcome = `Welcome to Learn with Jasper! Type help to see the commands.`

const msgBye = `Bye! Keep practicing.`

const msgUnknownCommand = `Unknown command %q. Type help to see the commands.`

const msgUsage = `Usage: %s`

const msgLoginRequired = `Please log in first.`

const msgAlreadyLoggedIn = `You are already logged in as %s. Use logout first.`

const msgLoggedIn = `Welcome back, %s!`

const msgRegistered = `Welcome, %s! Your account is ready.`

const msgInvalidCredentials = `Invalid username or password.`

const msgRegisterFailed = `Registration failed: %v.`

const msgNotLoggedIn = `Not logged in.`

const msgSelectedTables = `Selected tables: %s`

const msgNoProblem = `No active problem. Type start to begin.`

const msgTypeAnswer = `Type your answer first.`

const msgWaitNext = `Hold on, the next problem is coming.`

const msgTimeLeft = `Time left: %s`

const msgNoHistory = `No sessions yet. Type start to begin!`

const msgEmptyBoard = `No players yet.`

const msgExported = `Leaderboard saved to %s.`

const msgCommandFailed = `Something went wrong, please try again.`
