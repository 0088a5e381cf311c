package upstream

// TripQuery is the GraphQL document sent for every trip search.
const TripQuery = `query Trip(
  $from: Location!
  $to: Location!
  $dateTime: DateTime
  $arriveBy: Boolean
  $numTripPatterns: Int
  $searchWindow: Int
  $modes: Modes
  $banned: InputBanned
  $whiteListed: InputWhiteListed
  $walkSpeed: Float
  $transferSlack: Int
  $transferPenalty: Int
  $waitReluctance: Float
  $walkReluctance: Float
) {
  trip(
    from: $from
    to: $to
    dateTime: $dateTime
    arriveBy: $arriveBy
    numTripPatterns: $numTripPatterns
    searchWindow: $searchWindow
    modes: $modes
    banned: $banned
    whiteListed: $whiteListed
    walkSpeed: $walkSpeed
    transferSlack: $transferSlack
    transferPenalty: $transferPenalty
    waitReluctance: $waitReluctance
    walkReluctance: $walkReluctance
  ) {
    metadata { searchWindowUsed nextDateTime prevDateTime }
    routingErrors { code inputField description }
    tripPatterns {
      startTime endTime expectedStartTime expectedEndTime
      duration distance walkDistance
      systemNotices { tag text }
      legs {
        mode transportSubmode distance duration realtime
        aimedStartTime aimedEndTime expectedStartTime expectedEndTime
        fromPlace { ...place }
        toPlace { ...place }
        line {
          id name publicCode transportMode transportSubmode flexibleLineType
          notices { ...notice }
        }
        authority { id name url }
        serviceJourney {
          id publicCode
          notices { ...notice }
          journeyPattern { notices { ...notice } }
        }
        fromEstimatedCall { notices { ...notice } }
        intermediateEstimatedCalls { notices { ...notice } }
      }
    }
  }
}

fragment place on Place {
  name latitude longitude
  quay { id name publicCode }
  bikeRentalStation { id name }
}

fragment notice on Notice { id text }
`
